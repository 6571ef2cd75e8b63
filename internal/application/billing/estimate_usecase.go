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

// EstimateUseCase ciclo de vida de presupuestos: alta, edición, transiciones,
// expiración y conversión a factura.
type EstimateUseCase struct {
	d   Deps
	log zerolog.Logger
}

// NewEstimateUseCase construye el caso de uso.
func NewEstimateUseCase(d Deps, log zerolog.Logger) *EstimateUseCase {
	return &EstimateUseCase{d: d.withDefaults(), log: log.With().Str("component", "estimates").Logger()}
}

// estimateDraft datos validados comunes a Create y Update.
type estimateDraft struct {
	items       []entity.LineItem
	taxRate     decimal.Decimal
	issueDate   time.Time
	expiresDate time.Time
	propertyID  *string
}

func (uc *EstimateUseCase) validate(in dto.EstimateRequest) (*estimateDraft, error) {
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
	expires, err := parseDate("expires_date", in.ExpiresDate, issue.AddDate(0, 0, uc.d.Settings.EstimateValidDays))
	if err != nil {
		return nil, err
	}
	if expires.Before(issue) {
		return nil, domain.Invalid("expires_date", "no puede ser anterior a la fecha de emisión")
	}
	return &estimateDraft{
		items:       items,
		taxRate:     rate,
		issueDate:   issue,
		expiresDate: expires,
		propertyID:  optionalID(in.PropertyID),
	}, nil
}

// Create crea un presupuesto en Draft con número EST-xxxxxx y token público.
// Si viene NewCustomer, el cliente se crea en la misma transacción.
func (uc *EstimateUseCase) Create(ctx context.Context, p access.Principal, in dto.EstimateRequest) (*dto.EstimateResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionCreate, access.Ref(access.ResourceEstimate, "")); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CustomerID) == "" && in.NewCustomer == nil {
		return nil, domain.Invalid("customer_id", "se requiere un cliente existente o uno nuevo")
	}
	draft, err := uc.validate(in)
	if err != nil {
		return nil, err
	}
	totals := domainbilling.DocumentTotals(draft.items, draft.taxRate)

	var est *entity.Estimate
	err = uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		customerID, err := uc.resolveCustomer(ctx, r, in)
		if err != nil {
			return err
		}
		if err := checkProperty(ctx, r, customerID, draft.propertyID); err != nil {
			return err
		}

		now := uc.d.Now()
		est = &entity.Estimate{
			ID:          uuid.New().String(),
			CustomerID:  customerID,
			PropertyID:  draft.propertyID,
			IssueDate:   draft.issueDate,
			ExpiresDate: draft.expiresDate,
			Subtotal:    totals.Subtotal,
			TaxRate:     draft.taxRate,
			TaxAmount:   totals.TaxAmount,
			Total:       totals.Total,
			Notes:       in.Notes,
			Terms:       in.Terms,
			Status:      entity.EstimateStatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := uc.d.IDs.Allocate(ctx, KindEstimate, r.Estimates, func(ids Identifiers) error {
			est.Number = ids.Number
			est.PublicToken = ids.PublicToken
			return r.Estimates.Create(ctx, est)
		}); err != nil {
			return err
		}

		attachLineItems(draft.items, est.ID)
		if err := r.Estimates.ReplaceItems(ctx, est.ID, draft.items); err != nil {
			return fmt.Errorf("guardar líneas: %w", err)
		}
		return r.Estimates.AppendActivity(ctx, newActivity(est.ID, entity.ActivityCreated,
			fmt.Sprintf("Presupuesto %s creado", est.Number), now))
	})
	if err != nil {
		return nil, err
	}

	uc.d.Metrics.DocumentCreated(KindEstimate)
	uc.log.Info().Str("estimate_id", est.ID).Str("number", est.Number).Msg("presupuesto creado")
	return toEstimateResponse(est, est.Status, draft.items), nil
}

func (uc *EstimateUseCase) resolveCustomer(ctx context.Context, r Repos, in dto.EstimateRequest) (string, error) {
	if id := strings.TrimSpace(in.CustomerID); id != "" {
		c, err := findCustomer(ctx, r, id)
		if err != nil {
			return "", err
		}
		return c.ID, nil
	}
	nc := in.NewCustomer
	if strings.TrimSpace(nc.Name) == "" {
		return "", domain.Invalid("new_customer.name", "el nombre es obligatorio")
	}
	now := uc.d.Now()
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(nc.Name),
		Email:     strings.TrimSpace(nc.Email),
		Phone:     strings.TrimSpace(nc.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Customers.Create(ctx, c); err != nil {
		return "", fmt.Errorf("crear cliente: %w", err)
	}
	return c.ID, nil
}

// Update reemplaza cabecera y líneas. Solo Draft o Sent (con la expiración aplicada).
func (uc *EstimateUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.EstimateRequest) (*dto.EstimateResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceEstimate, id)); err != nil {
		return nil, err
	}
	draft, err := uc.validate(in)
	if err != nil {
		return nil, err
	}
	totals := domainbilling.DocumentTotals(draft.items, draft.taxRate)

	var est *entity.Estimate
	err = uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		var err error
		est, err = r.Estimates.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := uc.d.Now()
		if st := domainbilling.EffectiveEstimateStatus(est, now); !domainbilling.IsEditable(st) {
			return domain.InvalidState("el presupuesto %s está en estado %s y no admite cambios", est.Number, st)
		}
		if cid := strings.TrimSpace(in.CustomerID); cid != "" && cid != est.CustomerID {
			if _, err := findCustomer(ctx, r, cid); err != nil {
				return err
			}
			est.CustomerID = cid
		}
		if err := checkProperty(ctx, r, est.CustomerID, draft.propertyID); err != nil {
			return err
		}

		est.PropertyID = draft.propertyID
		est.IssueDate = draft.issueDate
		est.ExpiresDate = draft.expiresDate
		est.TaxRate = draft.taxRate
		est.Subtotal = totals.Subtotal
		est.TaxAmount = totals.TaxAmount
		est.Total = totals.Total
		est.Notes = in.Notes
		est.Terms = in.Terms
		est.UpdatedAt = now
		if err := r.Estimates.Update(ctx, est); err != nil {
			return err
		}
		attachLineItems(draft.items, est.ID)
		if err := r.Estimates.ReplaceItems(ctx, est.ID, draft.items); err != nil {
			return fmt.Errorf("guardar líneas: %w", err)
		}
		return r.Estimates.AppendActivity(ctx, newActivity(est.ID, entity.ActivityUpdated,
			fmt.Sprintf("Presupuesto %s actualizado", est.Number), now))
	})
	if err != nil {
		return nil, err
	}
	return toEstimateResponse(est, domainbilling.EffectiveEstimateStatus(est, uc.d.Now()), draft.items), nil
}

// Delete borra el presupuesto con sus líneas e historial. Solo Draft o Sent.
func (uc *EstimateUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionDelete, access.Ref(access.ResourceEstimate, id)); err != nil {
		return err
	}
	return uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		est, err := r.Estimates.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if st := domainbilling.EffectiveEstimateStatus(est, uc.d.Now()); !domainbilling.IsEditable(st) {
			return domain.InvalidState("el presupuesto %s está en estado %s y no se puede borrar", est.Number, st)
		}
		return r.Estimates.Delete(ctx, id)
	})
}

var statusActivity = map[entity.EstimateStatus]string{
	entity.EstimateStatusSent:     entity.ActivitySent,
	entity.EstimateStatusApproved: entity.ActivityApproved,
	entity.EstimateStatusRejected: entity.ActivityRejected,
}

// SetStatus aplica una transición manual (Sent, Approved, Rejected).
func (uc *EstimateUseCase) SetStatus(ctx context.Context, p access.Principal, id string, target entity.EstimateStatus) (*dto.EstimateResponse, error) {
	action, ok := statusActivity[target]
	if !ok {
		return nil, domain.Invalid("status", "estado destino inválido %q", target)
	}
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceEstimate, id)); err != nil {
		return nil, err
	}

	var est *entity.Estimate
	err := uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		var err error
		est, err = r.Estimates.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := uc.d.Now()
		current := domainbilling.EffectiveEstimateStatus(est, now)
		if !domainbilling.CanTransition(current, target) {
			return domain.InvalidState("no se puede pasar el presupuesto %s de %s a %s", est.Number, current, target)
		}
		if err := r.Estimates.UpdateStatus(ctx, id, target); err != nil {
			return err
		}
		est.Status = target
		est.UpdatedAt = now
		return r.Estimates.AppendActivity(ctx, newActivity(id, action,
			fmt.Sprintf("Presupuesto %s marcado como %s", est.Number, target), now))
	})
	if err != nil {
		return nil, err
	}
	return toEstimateResponse(est, est.Status, nil), nil
}

// Convert crea una factura a partir de un presupuesto aprobado. Copia cliente,
// propiedad, notas, importes y líneas tal cual; la factura nace con fecha de hoy y
// vence a los PaymentTermsDays. Un presupuesto solo se convierte una vez.
func (uc *EstimateUseCase) Convert(ctx context.Context, p access.Principal, id string) (*dto.InvoiceResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceEstimate, id)); err != nil {
		return nil, err
	}

	var (
		inv   *entity.Invoice
		items []entity.LineItem
	)
	err := uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		est, err := r.Estimates.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := uc.d.Now()
		if err := domainbilling.CanConvert(est, now); err != nil {
			return err
		}
		srcItems, err := r.Estimates.ListItems(ctx, est.ID)
		if err != nil {
			return fmt.Errorf("leer líneas del presupuesto: %w", err)
		}

		issue := dateOf(now)
		estimateID := est.ID
		inv = &entity.Invoice{
			ID:         uuid.New().String(),
			CustomerID: est.CustomerID,
			PropertyID: est.PropertyID,
			EstimateID: &estimateID,
			IssueDate:  issue,
			DueDate:    issue.AddDate(0, 0, uc.d.Settings.PaymentTermsDays),
			Subtotal:   est.Subtotal,
			TaxRate:    est.TaxRate,
			TaxAmount:  est.TaxAmount,
			Total:      est.Total,
			Notes:      est.Notes,
			Status:     domainbilling.ResolveInvoiceStatus(est.Total, decimal.Zero),
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

		items = copyLineItems(srcItems, inv.ID)
		if err := r.Invoices.ReplaceItems(ctx, inv.ID, items); err != nil {
			return fmt.Errorf("copiar líneas a la factura: %w", err)
		}
		if err := r.Estimates.SetConvertedInvoice(ctx, est.ID, inv.ID); err != nil {
			return err
		}
		return r.Estimates.AppendActivity(ctx, newActivity(est.ID, entity.ActivityConverted,
			fmt.Sprintf("Convertido en la factura %s", inv.Number), now))
	})
	if err != nil {
		return nil, err
	}

	uc.d.Metrics.EstimateConverted()
	uc.d.Metrics.DocumentCreated(KindInvoice)
	uc.log.Info().
		Str("estimate_id", id).
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.Number).
		Msg("presupuesto convertido en factura")
	return toInvoiceResponse(inv, decimal.Zero, items, nil), nil
}

// Get devuelve el presupuesto con líneas y estado efectivo.
func (uc *EstimateUseCase) Get(ctx context.Context, p access.Principal, id string) (*dto.EstimateResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceEstimate, id)); err != nil {
		return nil, err
	}
	est, err := uc.d.Repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.d.Repos.Estimates.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer líneas: %w", err)
	}
	return toEstimateResponse(est, domainbilling.EffectiveEstimateStatus(est, uc.d.Now()), items), nil
}

// GetByToken vista pública por token (sin autenticación).
func (uc *EstimateUseCase) GetByToken(ctx context.Context, token string) (*dto.PublicEstimateResponse, error) {
	doc, err := uc.documentByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return toPublicEstimate(doc), nil
}

// GetByTokenFor vista de portal: además del token exige que el presupuesto sea del cliente.
func (uc *EstimateUseCase) GetByTokenFor(ctx context.Context, p access.Principal, token string) (*dto.PublicEstimateResponse, error) {
	est, err := uc.d.Repos.Estimates.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceEstimate, est.ID)); err != nil {
		return nil, err
	}
	return uc.GetByToken(ctx, token)
}

// Document carga todo lo necesario para renderizar el presupuesto.
func (uc *EstimateUseCase) Document(ctx context.Context, p access.Principal, id string) (*EstimateDocument, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceEstimate, id)); err != nil {
		return nil, err
	}
	est, err := uc.d.Repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.document(ctx, est)
}

func (uc *EstimateUseCase) documentByToken(ctx context.Context, token string) (*EstimateDocument, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNotFound
	}
	est, err := uc.d.Repos.Estimates.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return uc.document(ctx, est)
}

func (uc *EstimateUseCase) document(ctx context.Context, est *entity.Estimate) (*EstimateDocument, error) {
	items, err := uc.d.Repos.Estimates.ListItems(ctx, est.ID)
	if err != nil {
		return nil, fmt.Errorf("leer líneas: %w", err)
	}
	customer, property, err := lookupParties(ctx, uc.d.Repos, est.CustomerID, est.PropertyID)
	if err != nil {
		return nil, err
	}
	return &EstimateDocument{
		Estimate:     est,
		Status:       domainbilling.EffectiveEstimateStatus(est, uc.d.Now()),
		Customer:     customer,
		Property:     property,
		Items:        items,
		BusinessName: uc.d.Settings.BusinessName,
	}, nil
}

func toPublicEstimate(doc *EstimateDocument) *dto.PublicEstimateResponse {
	e := doc.Estimate
	return &dto.PublicEstimateResponse{
		Number:       e.Number,
		Token:        e.PublicToken,
		CustomerName: doc.Customer.Name,
		PropertyName: propertyName(doc.Property),
		IssueDate:    formatDate(e.IssueDate),
		ExpiresDate:  formatDate(e.ExpiresDate),
		Subtotal:     e.Subtotal,
		TaxRate:      e.TaxRate,
		TaxAmount:    e.TaxAmount,
		Total:        e.Total,
		Status:       string(doc.Status),
		Notes:        e.Notes,
		Terms:        e.Terms,
		Items:        toLineItemResponses(doc.Items),
		BusinessName: doc.BusinessName,
	}
}

// List lista presupuestos; antes persiste la expiración de los vencidos.
// Un principal de portal solo ve los de su cliente.
func (uc *EstimateUseCase) List(ctx context.Context, p access.Principal, q dto.EstimateListQuery) ([]*dto.EstimateResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionList, access.Ref(access.ResourceEstimate, "")); err != nil {
		return nil, err
	}
	if _, err := uc.ExpireOverdue(ctx); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Estimates.List(ctx, repository.EstimateFilter{
		CustomerID: scopeCustomer(p, q.CustomerID),
		Status:     entity.EstimateStatus(q.Status),
		Page:       normalizePage(q.PageRequest),
	})
	if err != nil {
		return nil, err
	}
	now := uc.d.Now()
	out := make([]*dto.EstimateResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEstimateResponse(e, domainbilling.EffectiveEstimateStatus(e, now), nil))
	}
	return out, nil
}

// ListPublic listado de portal en forma pública (sin UUID).
func (uc *EstimateUseCase) ListPublic(ctx context.Context, p access.Principal, q dto.EstimateListQuery) ([]*dto.PublicEstimateResponse, error) {
	list, err := uc.List(ctx, p, q)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PublicEstimateResponse, 0, len(list))
	for _, e := range list {
		out = append(out, &dto.PublicEstimateResponse{
			Number:      e.Number,
			Token:       e.PublicToken,
			IssueDate:   e.IssueDate,
			ExpiresDate: e.ExpiresDate,
			Subtotal:    e.Subtotal,
			TaxRate:     e.TaxRate,
			TaxAmount:   e.TaxAmount,
			Total:       e.Total,
			Status:      e.Status,
		})
	}
	return out, nil
}

// ResolveStatus devuelve el estado efectivo del presupuesto.
func (uc *EstimateUseCase) ResolveStatus(ctx context.Context, p access.Principal, id string) (entity.EstimateStatus, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceEstimate, id)); err != nil {
		return "", err
	}
	est, err := uc.d.Repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return domainbilling.EffectiveEstimateStatus(est, uc.d.Now()), nil
}

// ExpireOverdue persiste Expired en los Draft/Sent vencidos y registra la actividad.
// Devuelve cuántos presupuestos expiraron.
func (uc *EstimateUseCase) ExpireOverdue(ctx context.Context) (int, error) {
	var expired int
	err := uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		now := uc.d.Now()
		list, err := r.Estimates.ListOverdue(ctx, dateOf(now))
		if err != nil {
			return fmt.Errorf("listar presupuestos vencidos: %w", err)
		}
		for _, e := range list {
			if err := r.Estimates.UpdateStatus(ctx, e.ID, entity.EstimateStatusExpired); err != nil {
				return err
			}
			if err := r.Estimates.AppendActivity(ctx, newActivity(e.ID, entity.ActivityExpired,
				fmt.Sprintf("Presupuesto %s vencido el %s", e.Number, formatDate(e.ExpiresDate)), now)); err != nil {
				return err
			}
		}
		expired = len(list)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		uc.log.Info().Int("count", expired).Msg("presupuestos expirados")
	}
	return expired, nil
}

// Activity historial del presupuesto, en orden cronológico.
func (uc *EstimateUseCase) Activity(ctx context.Context, p access.Principal, id string) ([]dto.ActivityResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceEstimate, id)); err != nil {
		return nil, err
	}
	entries, err := uc.d.Repos.Estimates.ListActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityResponse, 0, len(entries))
	for _, a := range entries {
		out = append(out, dto.ActivityResponse{
			Action:      a.Action,
			Description: a.Description,
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}
