package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, invoice_id, amount, method, payment_date, notes, created_at, updated_at`

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	if err := row.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.PaymentDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create registra un pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.InvoiceID, p.Amount, p.Method, p.PaymentDate, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListByInvoice lista los pagos de una factura por fecha.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE invoice_id = $1 ORDER BY payment_date, created_at, id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	list := []entity.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Update actualiza importe, método, fecha y notas.
func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE payments SET amount = $2, method = $3, payment_date = $4, notes = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.Amount, p.Method, p.PaymentDate, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// Delete elimina un pago.
func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// SumByInvoice devuelve Σ amount de la factura.
func (r *PaymentRepo) SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, invoiceID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}
