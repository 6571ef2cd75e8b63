package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	domainbilling "github.com/jhoicas/Facturacion-api/internal/domain/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// InvoiceUseCase alta, edición, consulta y borrado de facturas. El estado
// (Unpaid/Partial/Paid) siempre se deriva de los pagos al leer.
type InvoiceUseCase struct {
	d   Deps
	log zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(d Deps, log zerolog.Logger) *InvoiceUseCase {
	return &InvoiceUseCase{d: d.withDefaults(), log: log.With().Str("component", "invoices").Logger()}
}

type invoiceDraft struct {
	items      []entity.LineItem
	taxRate    decimal.Decimal
	issueDate  time.Time
	dueDate    time.Time
	propertyID *string
}

func (uc *InvoiceUseCase) validate(in dto.InvoiceRequest) (*invoiceDraft, error) {
	items, err := buildLineItems(in.Items)
	if err != nil {
		return nil, err
	}
	rate, err := resolveTaxRate(in.TaxRate, uc.d.Settings.DefaultTaxRate)
	if err != nil {
		return nil, err
	}
	issue, err := parseDate("issue_date", in.IssueDate, dateOf(uc.d.Now()))
	if err != nil {
		return nil, err
	}
	due, err := parseDate("due_date", in.DueDate, issue.AddDate(0, 0, uc.d.Settings.PaymentTermsDays))
	if err != nil {
		return nil, err
	}
	if due.Before(issue) {
		return nil, domain.Invalid("due_date", "no puede ser anterior a la fecha de emisión")
	}
	return &invoiceDraft{
		items:      items,
		taxRate:    rate,
		issueDate:  issue,
		dueDate:    due,
		propertyID: optionalID(in.PropertyID),
	}, nil
}

// Create crea una factura directa (sin presupuesto) con número INV-xxxxxx.
func (uc *InvoiceUseCase) Create(ctx context.Context, p access.Principal, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionCreate, access.Ref(access.ResourceInvoice, "")); err != nil {
		return nil, err
	}
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, domain.Invalid("customer_id", "el cliente es obligatorio")
	}
	draft, err := uc.validate(in)
	if err != nil {
		return nil, err
	}
	totals := domainbilling.DocumentTotals(draft.items, draft.taxRate)

	var inv *entity.Invoice
	err = uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		if _, err := findCustomer(ctx, r, customerID); err != nil {
			return err
		}
		if err := checkProperty(ctx, r, customerID, draft.propertyID); err != nil {
			return err
		}
		now := uc.d.Now()
		inv = &entity.Invoice{
			ID:         uuid.New().String(),
			CustomerID: customerID,
			PropertyID: draft.propertyID,
			IssueDate:  draft.issueDate,
			DueDate:    draft.dueDate,
			Subtotal:   totals.Subtotal,
			TaxRate:    draft.taxRate,
			TaxAmount:  totals.TaxAmount,
			Total:      totals.Total,
			Notes:      in.Notes,
			Status:     domainbilling.ResolveInvoiceStatus(totals.Total, decimal.Zero),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := uc.d.IDs.Allocate(ctx, KindInvoice, r.Invoices, func(ids Identifiers) error {
			inv.Number = ids.Number
			inv.PublicToken = ids.PublicToken
			return r.Invoices.Create(ctx, inv)
		}); err != nil {
			return err
		}
		attachLineItems(draft.items, inv.ID)
		if err := r.Invoices.ReplaceItems(ctx, inv.ID, draft.items); err != nil {
			return fmt.Errorf("guardar líneas: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.d.Metrics.DocumentCreated(KindInvoice)
	uc.log.Info().Str("invoice_id", inv.ID).Str("number", inv.Number).Msg("factura creada")
	return toInvoiceResponse(inv, decimal.Zero, draft.items, nil), nil
}

// Update reemplaza cabecera y líneas y recalcula totales y estado con los pagos actuales.
func (uc *InvoiceUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceInvoice, id)); err != nil {
		return nil, err
	}
	draft, err := uc.validate(in)
	if err != nil {
		return nil, err
	}
	totals := domainbilling.DocumentTotals(draft.items, draft.taxRate)

	var (
		inv      *entity.Invoice
		paid     decimal.Decimal
		payments []entity.Payment
	)
	err = uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cid := strings.TrimSpace(in.CustomerID); cid != "" && cid != inv.CustomerID {
			if _, err := findCustomer(ctx, r, cid); err != nil {
				return err
			}
			inv.CustomerID = cid
		}
		if err := checkProperty(ctx, r, inv.CustomerID, draft.propertyID); err != nil {
			return err
		}
		payments, err = r.Payments.ListByInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("leer pagos: %w", err)
		}
		paid = domainbilling.SumPayments(payments)

		inv.PropertyID = draft.propertyID
		inv.IssueDate = draft.issueDate
		inv.DueDate = draft.dueDate
		inv.TaxRate = draft.taxRate
		inv.Subtotal = totals.Subtotal
		inv.TaxAmount = totals.TaxAmount
		inv.Total = totals.Total
		inv.Notes = in.Notes
		inv.Status = domainbilling.ResolveInvoiceStatus(inv.Total, paid)
		inv.UpdatedAt = uc.d.Now()
		if err := r.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		attachLineItems(draft.items, inv.ID)
		if err := r.Invoices.ReplaceItems(ctx, inv.ID, draft.items); err != nil {
			return fmt.Errorf("guardar líneas: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, paid, draft.items, payments), nil
}

// Delete borra la factura con sus líneas y pagos.
func (uc *InvoiceUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionDelete, access.Ref(access.ResourceInvoice, id)); err != nil {
		return err
	}
	return uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		if _, err := r.Invoices.GetForUpdate(ctx, id); err != nil {
			return err
		}
		return r.Invoices.Delete(ctx, id)
	})
}

// Get devuelve la factura con líneas, pagos y estado derivado.
func (uc *InvoiceUseCase) Get(ctx context.Context, p access.Principal, id string) (*dto.InvoiceResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceInvoice, id)); err != nil {
		return nil, err
	}
	inv, err := uc.d.Repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.d.Repos.Invoices.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer líneas: %w", err)
	}
	payments, err := uc.d.Repos.Payments.ListByInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer pagos: %w", err)
	}
	return toInvoiceResponse(inv, domainbilling.SumPayments(payments), items, payments), nil
}

// GetByToken vista pública por token (sin autenticación).
func (uc *InvoiceUseCase) GetByToken(ctx context.Context, token string) (*dto.PublicInvoiceResponse, error) {
	doc, err := uc.documentByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return toPublicInvoice(doc), nil
}

// GetByTokenFor vista de portal: exige que la factura sea del cliente del principal.
func (uc *InvoiceUseCase) GetByTokenFor(ctx context.Context, p access.Principal, token string) (*dto.PublicInvoiceResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNotFound
	}
	inv, err := uc.d.Repos.Invoices.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceInvoice, inv.ID)); err != nil {
		return nil, err
	}
	doc, err := uc.document(ctx, inv)
	if err != nil {
		return nil, err
	}
	return toPublicInvoice(doc), nil
}

// Document carga todo lo necesario para renderizar la factura.
func (uc *InvoiceUseCase) Document(ctx context.Context, p access.Principal, id string) (*InvoiceDocument, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceInvoice, id)); err != nil {
		return nil, err
	}
	inv, err := uc.d.Repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.document(ctx, inv)
}

func (uc *InvoiceUseCase) documentByToken(ctx context.Context, token string) (*InvoiceDocument, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNotFound
	}
	inv, err := uc.d.Repos.Invoices.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return uc.document(ctx, inv)
}

func (uc *InvoiceUseCase) document(ctx context.Context, inv *entity.Invoice) (*InvoiceDocument, error) {
	items, err := uc.d.Repos.Invoices.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("leer líneas: %w", err)
	}
	payments, err := uc.d.Repos.Payments.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("leer pagos: %w", err)
	}
	customer, property, err := lookupParties(ctx, uc.d.Repos, inv.CustomerID, inv.PropertyID)
	if err != nil {
		return nil, err
	}
	paid := domainbilling.SumPayments(payments)
	return &InvoiceDocument{
		Invoice:             inv,
		Customer:            customer,
		Property:            property,
		Items:               items,
		Payments:            payments,
		AmountPaid:          paid,
		BalanceDue:          inv.Total.Sub(paid),
		BusinessName:        uc.d.Settings.BusinessName,
		PaymentInstructions: uc.d.Settings.PaymentInstructions,
	}, nil
}

func toPublicInvoice(doc *InvoiceDocument) *dto.PublicInvoiceResponse {
	inv := doc.Invoice
	out := &dto.PublicInvoiceResponse{
		Number:              inv.Number,
		Token:               inv.PublicToken,
		CustomerName:        doc.Customer.Name,
		PropertyName:        propertyName(doc.Property),
		IssueDate:           formatDate(inv.IssueDate),
		DueDate:             formatDate(inv.DueDate),
		Subtotal:            inv.Subtotal,
		TaxRate:             inv.TaxRate,
		TaxAmount:           inv.TaxAmount,
		Total:               inv.Total,
		AmountPaid:          doc.AmountPaid,
		BalanceDue:          doc.BalanceDue,
		Status:              string(domainbilling.ResolveInvoiceStatus(inv.Total, doc.AmountPaid)),
		Notes:               inv.Notes,
		Items:               toLineItemResponses(doc.Items),
		BusinessName:        doc.BusinessName,
		PaymentInstructions: doc.PaymentInstructions,
	}
	for _, p := range doc.Payments {
		out.Payments = append(out.Payments, dto.PublicPaymentResponse{
			Amount:      p.Amount,
			Method:      p.Method,
			PaymentDate: formatDate(p.PaymentDate),
		})
	}
	return out
}

// List lista facturas con estado y saldo derivados. El filtro por estado usa la
// columna cacheada, que se recalcula en cada escritura de factura o pago.
func (uc *InvoiceUseCase) List(ctx context.Context, p access.Principal, q dto.InvoiceListQuery) ([]*dto.InvoiceResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionList, access.Ref(access.ResourceInvoice, "")); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Invoices.List(ctx, repository.InvoiceFilter{
		CustomerID: scopeCustomer(p, q.CustomerID),
		Status:     entity.InvoiceStatus(q.Status),
		Page:       normalizePage(q.PageRequest),
	})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		paid, err := uc.d.Repos.Payments.SumByInvoice(ctx, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("sumar pagos: %w", err)
		}
		out = append(out, toInvoiceResponse(inv, paid, nil, nil))
	}
	return out, nil
}

// ListPublic listado de portal (sin UUID).
func (uc *InvoiceUseCase) ListPublic(ctx context.Context, p access.Principal, q dto.InvoiceListQuery) ([]*dto.PublicInvoiceResponse, error) {
	list, err := uc.List(ctx, p, q)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PublicInvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, &dto.PublicInvoiceResponse{
			Number:     inv.Number,
			Token:      inv.PublicToken,
			IssueDate:  inv.IssueDate,
			DueDate:    inv.DueDate,
			Subtotal:   inv.Subtotal,
			TaxRate:    inv.TaxRate,
			TaxAmount:  inv.TaxAmount,
			Total:      inv.Total,
			AmountPaid: inv.AmountPaid,
			BalanceDue: inv.BalanceDue,
			Status:     inv.Status,
		})
	}
	return out, nil
}

// ResolveStatus recalcula el estado a partir de los pagos actuales.
func (uc *InvoiceUseCase) ResolveStatus(ctx context.Context, p access.Principal, id string) (*dto.InvoiceStatusResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceInvoice, id)); err != nil {
		return nil, err
	}
	inv, err := uc.d.Repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	paid, err := uc.d.Repos.Payments.SumByInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sumar pagos: %w", err)
	}
	return statusResponse(inv, paid), nil
}

// ComputeBalance total − Σ pagos; negativo = crédito a favor del cliente.
func (uc *InvoiceUseCase) ComputeBalance(ctx context.Context, p access.Principal, id string) (*dto.BalanceResponse, error) {
	st, err := uc.ResolveStatus(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		InvoiceID:  st.InvoiceID,
		Total:      st.Total,
		AmountPaid: st.AmountPaid,
		BalanceDue: st.BalanceDue,
	}, nil
}

func statusResponse(inv *entity.Invoice, paid decimal.Decimal) *dto.InvoiceStatusResponse {
	return &dto.InvoiceStatusResponse{
		InvoiceID:  inv.ID,
		Number:     inv.Number,
		Status:     string(domainbilling.ResolveInvoiceStatus(inv.Total, paid)),
		Total:      inv.Total,
		AmountPaid: paid,
		BalanceDue: inv.Total.Sub(paid),
	}
}
