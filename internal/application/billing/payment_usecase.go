package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	domainbilling "github.com/jhoicas/Facturacion-api/internal/domain/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// PaymentUseCase registra, modifica y borra pagos. Cada escritura bloquea la
// factura, relee Σ pagos y reescribe el estado en la misma transacción.
type PaymentUseCase struct {
	d   Deps
	log zerolog.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(d Deps, log zerolog.Logger) *PaymentUseCase {
	return &PaymentUseCase{d: d.withDefaults(), log: log.With().Str("component", "payments").Logger()}
}

func (uc *PaymentUseCase) validate(in dto.PaymentRequest) (*entity.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount", "el importe debe ser mayor que 0")
	}
	if err := domainbilling.ValidateScale("amount", in.Amount, domainbilling.CurrencyPlaces); err != nil {
		return nil, err
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		return nil, domain.Invalid("method", "el método de pago es obligatorio")
	}
	date, err := parseDate("payment_date", in.PaymentDate, dateOf(uc.d.Now()))
	if err != nil {
		return nil, err
	}
	return &entity.Payment{
		Amount:      in.Amount,
		Method:      method,
		PaymentDate: date,
		Notes:       in.Notes,
	}, nil
}

// refreshStatus relee Σ pagos y guarda el estado derivado. Debe llamarse con la
// factura bloqueada dentro de la transacción.
func refreshStatus(ctx context.Context, r Repos, inv *entity.Invoice) (decimal.Decimal, entity.InvoiceStatus, error) {
	paid, err := r.Payments.SumByInvoice(ctx, inv.ID)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("sumar pagos: %w", err)
	}
	status := domainbilling.ResolveInvoiceStatus(inv.Total, paid)
	if status != inv.Status {
		if err := r.Invoices.UpdateStatus(ctx, inv.ID, status); err != nil {
			return decimal.Zero, "", err
		}
		inv.Status = status
	}
	return paid, status, nil
}

func withInvoiceState(resp dto.PaymentResponse, total, paid decimal.Decimal, status entity.InvoiceStatus) *dto.PaymentResponse {
	balance := total.Sub(paid)
	resp.InvoiceStatus = string(status)
	resp.BalanceDue = &balance
	return &resp
}

// Record registra un pago contra la factura. Se admite sobrepago (saldo negativo).
func (uc *PaymentUseCase) Record(ctx context.Context, p access.Principal, invoiceID string, in dto.PaymentRequest) (*dto.PaymentResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceInvoice, invoiceID)); err != nil {
		return nil, err
	}
	pay, err := uc.validate(in)
	if err != nil {
		return nil, err
	}

	var (
		inv    *entity.Invoice
		paid   decimal.Decimal
		status entity.InvoiceStatus
	)
	err = uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		now := uc.d.Now()
		pay.ID = uuid.New().String()
		pay.InvoiceID = inv.ID
		pay.CreatedAt = now
		pay.UpdatedAt = now
		if err := r.Payments.Create(ctx, pay); err != nil {
			return err
		}
		paid, status, err = refreshStatus(ctx, r, inv)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.d.Metrics.PaymentRecorded(pay.Amount)
	uc.log.Info().
		Str("invoice_id", invoiceID).
		Str("payment_id", pay.ID).
		Str("amount", pay.Amount.StringFixed(2)).
		Str("status", string(status)).
		Msg("pago registrado")
	return withInvoiceState(toPaymentResponse(pay), inv.Total, paid, status), nil
}

// Update modifica importe, método, fecha o notas de un pago y recalcula el estado.
func (uc *PaymentUseCase) Update(ctx context.Context, p access.Principal, paymentID string, in dto.PaymentRequest) (*dto.PaymentResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourcePayment, paymentID)); err != nil {
		return nil, err
	}
	changes, err := uc.validate(in)
	if err != nil {
		return nil, err
	}

	var (
		pay    *entity.Payment
		inv    *entity.Invoice
		paid   decimal.Decimal
		status entity.InvoiceStatus
	)
	err = uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		var err error
		pay, err = r.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		inv, err = r.Invoices.GetForUpdate(ctx, pay.InvoiceID)
		if err != nil {
			return err
		}
		pay.Amount = changes.Amount
		pay.Method = changes.Method
		pay.PaymentDate = changes.PaymentDate
		pay.Notes = changes.Notes
		pay.UpdatedAt = uc.d.Now()
		if err := r.Payments.Update(ctx, pay); err != nil {
			return err
		}
		paid, status, err = refreshStatus(ctx, r, inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return withInvoiceState(toPaymentResponse(pay), inv.Total, paid, status), nil
}

// Delete borra un pago y devuelve el estado resultante de la factura.
func (uc *PaymentUseCase) Delete(ctx context.Context, p access.Principal, paymentID string) (*dto.InvoiceStatusResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionDelete, access.Ref(access.ResourcePayment, paymentID)); err != nil {
		return nil, err
	}

	var (
		inv  *entity.Invoice
		paid decimal.Decimal
	)
	err := uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		pay, err := r.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		inv, err = r.Invoices.GetForUpdate(ctx, pay.InvoiceID)
		if err != nil {
			return err
		}
		if err := r.Payments.Delete(ctx, paymentID); err != nil {
			return err
		}
		paid, _, err = refreshStatus(ctx, r, inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("payment_id", paymentID).Msg("pago eliminado")
	return statusResponse(inv, paid), nil
}

// List pagos de una factura.
func (uc *PaymentUseCase) List(ctx context.Context, p access.Principal, invoiceID string) ([]dto.PaymentResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceInvoice, invoiceID)); err != nil {
		return nil, err
	}
	payments, err := uc.d.Repos.Payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}
	return out, nil
}
