package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	domainbilling "github.com/jhoicas/Facturacion-api/internal/domain/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// buildLineItems descarta las filas sin descripción, valida el resto y calcula
// el total de cada línea. Exige al menos una línea.
func buildLineItems(in []dto.LineItemRequest) ([]entity.LineItem, error) {
	items := make([]entity.LineItem, 0, len(in))
	for i, r := range in {
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			continue
		}
		if !r.Quantity.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser mayor que 0")
		}
		if r.UnitPrice.IsNegative() {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].unit_price", i), "el precio unitario no puede ser negativo")
		}
		if err := domainbilling.ValidateScale(fmt.Sprintf("items[%d].quantity", i), r.Quantity, domainbilling.QuantityPlaces); err != nil {
			return nil, err
		}
		if err := domainbilling.ValidateScale(fmt.Sprintf("items[%d].unit_price", i), r.UnitPrice, domainbilling.CurrencyPlaces); err != nil {
			return nil, err
		}
		items = append(items, entity.LineItem{
			ID:          uuid.New().String(),
			Position:    len(items) + 1,
			Description: desc,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			Total:       domainbilling.LineTotal(r.Quantity, r.UnitPrice),
		})
	}
	if len(items) == 0 {
		return nil, domain.Invalid("items", "se requiere al menos una línea con descripción")
	}
	return items, nil
}

// copyLineItems duplica las líneas con IDs nuevos conservando importes.
func copyLineItems(src []entity.LineItem, documentID string) []entity.LineItem {
	out := make([]entity.LineItem, len(src))
	for i, it := range src {
		it.ID = uuid.New().String()
		it.DocumentID = documentID
		out[i] = it
	}
	return out
}

func attachLineItems(items []entity.LineItem, documentID string) {
	for i := range items {
		items[i].DocumentID = documentID
	}
}

// resolveTaxRate usa el porcentaje indicado o el de configuración.
func resolveTaxRate(in *decimal.Decimal, def decimal.Decimal) (decimal.Decimal, error) {
	rate := def
	if in != nil {
		rate = *in
	}
	if err := domainbilling.ValidateTaxRate(rate); err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

// parseDate interpreta YYYY-MM-DD; cadena vacía → def.
func parseDate(field, s string, def time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "fecha inválida %q, se espera YYYY-MM-DD", s)
	}
	return t, nil
}

// dateOf trunca a fecha de calendario (UTC, sin hora).
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}

func optionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func normalizePage(p dto.PageRequest) repository.Page {
	p.DefaultPage()
	if p.Limit > 100 {
		p.Limit = 100
	}
	return repository.Page{Limit: p.Limit, Offset: p.Offset}
}

// scopeCustomer restringe un listado al cliente del principal de portal.
func scopeCustomer(p access.Principal, requested string) string {
	if p.IsAdmin() {
		return requested
	}
	return p.CustomerID
}

// findCustomer carga el cliente; un id inexistente es un error de validación.
func findCustomer(ctx context.Context, r Repos, id string) (*entity.Customer, error) {
	c, err := r.Customers.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Invalid("customer_id", "el cliente no existe")
	}
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	return c, nil
}

// checkProperty valida que la propiedad exista y pertenezca al cliente.
func checkProperty(ctx context.Context, r Repos, customerID string, propertyID *string) error {
	if propertyID == nil {
		return nil
	}
	p, err := r.Properties.GetByID(ctx, *propertyID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid("property_id", "la propiedad no existe")
	}
	if err != nil {
		return fmt.Errorf("obtener propiedad: %w", err)
	}
	if p.CustomerID != customerID {
		return domain.Invalid("property_id", "la propiedad no pertenece al cliente")
	}
	return nil
}

// lookupParties carga cliente y propiedad para vistas públicas y PDF.
func lookupParties(ctx context.Context, r Repos, customerID string, propertyID *string) (*entity.Customer, *entity.Property, error) {
	customer, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, nil, fmt.Errorf("obtener cliente: %w", err)
	}
	var property *entity.Property
	if propertyID != nil {
		property, err = r.Properties.GetByID(ctx, *propertyID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("obtener propiedad: %w", err)
		}
	}
	return customer, property, nil
}

func propertyName(p *entity.Property) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func toLineItemResponses(items []entity.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LineItemResponse{
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return out
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		HourlyRate: c.HourlyRate,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}

func toPropertyResponse(p *entity.Property) *dto.PropertyResponse {
	return &dto.PropertyResponse{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		Name:       p.Name,
		Address:    p.Address,
		Type:       p.Type,
		Active:     p.Active,
	}
}

func toEstimateResponse(e *entity.Estimate, status entity.EstimateStatus, items []entity.LineItem) *dto.EstimateResponse {
	resp := &dto.EstimateResponse{
		ID:                 e.ID,
		CustomerID:         e.CustomerID,
		PropertyID:         e.PropertyID,
		Number:             e.Number,
		PublicToken:        e.PublicToken,
		IssueDate:          formatDate(e.IssueDate),
		ExpiresDate:        formatDate(e.ExpiresDate),
		Subtotal:           e.Subtotal,
		TaxRate:            e.TaxRate,
		TaxAmount:          e.TaxAmount,
		Total:              e.Total,
		Notes:              e.Notes,
		Terms:              e.Terms,
		Status:             string(status),
		ConvertedInvoiceID: e.ConvertedInvoiceID,
	}
	if items != nil {
		resp.Items = toLineItemResponses(items)
	}
	return resp
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Method:      p.Method,
		PaymentDate: formatDate(p.PaymentDate),
		Notes:       p.Notes,
	}
}

// toInvoiceResponse arma la respuesta con estado y saldo derivados de paid.
func toInvoiceResponse(inv *entity.Invoice, paid decimal.Decimal, items []entity.LineItem, payments []entity.Payment) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:          inv.ID,
		CustomerID:  inv.CustomerID,
		PropertyID:  inv.PropertyID,
		EstimateID:  inv.EstimateID,
		Number:      inv.Number,
		PublicToken: inv.PublicToken,
		IssueDate:   formatDate(inv.IssueDate),
		DueDate:     formatDate(inv.DueDate),
		Subtotal:    inv.Subtotal,
		TaxRate:     inv.TaxRate,
		TaxAmount:   inv.TaxAmount,
		Total:       inv.Total,
		AmountPaid:  paid,
		BalanceDue:  inv.Total.Sub(paid),
		Notes:       inv.Notes,
		Status:      string(domainbilling.ResolveInvoiceStatus(inv.Total, paid)),
	}
	if items != nil {
		resp.Items = toLineItemResponses(items)
	}
	for i := range payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(&payments[i]))
	}
	return resp
}

func newActivity(estimateID, action, description string, at time.Time) *entity.ActivityEntry {
	return &entity.ActivityEntry{
		ID:          uuid.New().String(),
		EstimateID:  estimateID,
		Action:      action,
		Description: description,
		CreatedAt:   at,
	}
}
