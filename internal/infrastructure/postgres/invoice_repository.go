package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `
	id, customer_id, property_id, estimate_id, number, public_token, issue_date, due_date,
	subtotal, tax_rate, tax_amount, total, notes, status, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CustomerID, &inv.PropertyID, &inv.EstimateID, &inv.Number, &inv.PublicToken,
		&inv.IssueDate, &inv.DueDate, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Total,
		&inv.Notes, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, arg any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// Create persiste la cabecera de la factura en un savepoint; número o token repetido → ErrConflict.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	return withSavepoint(ctx, r.q, func(q Querier) error {
		_, err := q.Exec(ctx, query,
			invoice.ID, invoice.CustomerID, invoice.PropertyID, invoice.EstimateID, invoice.Number, invoice.PublicToken,
			invoice.IssueDate, invoice.DueDate, invoice.Subtotal, invoice.TaxRate, invoice.TaxAmount, invoice.Total,
			invoice.Notes, invoice.Status, invoice.CreatedAt, invoice.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("invoice number %s: %w", invoice.Number, domain.ErrConflict)
			}
			return fmt.Errorf("insert invoice: %w", err)
		}
		return nil
	})
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetByToken obtiene una factura por su token público.
func (r *InvoiceRepo) GetByToken(ctx context.Context, token string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE public_token = $1`, token)
}

// GetForUpdate obtiene y bloquea la factura (serializa pagos concurrentes).
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

// List lista facturas, más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var w listWhere
	if f.CustomerID != "" {
		w.add("customer_id = $%d", f.CustomerID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.sql() + ` ORDER BY issue_date DESC, number DESC`
	query += w.page(f.Page)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Update actualiza la cabecera. Número, token y presupuesto de origen no cambian.
func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET customer_id = $2,
		    property_id = $3,
		    issue_date  = $4,
		    due_date    = $5,
		    subtotal    = $6,
		    tax_rate    = $7,
		    tax_amount  = $8,
		    total       = $9,
		    notes       = $10,
		    status      = $11,
		    updated_at  = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CustomerID, invoice.PropertyID, invoice.IssueDate, invoice.DueDate,
		invoice.Subtotal, invoice.TaxRate, invoice.TaxAmount, invoice.Total, invoice.Notes,
		invoice.Status, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// UpdateStatus actualiza la columna de estado.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// Delete elimina la factura; líneas y pagos caen en cascada.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// ReplaceItems reemplaza todas las líneas de la factura.
func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID string, items []entity.LineItem) error {
	return replaceItems(ctx, r.q, invoiceItems, invoiceID, items)
}

// ListItems devuelve las líneas de la factura.
func (r *InvoiceRepo) ListItems(ctx context.Context, invoiceID string) ([]entity.LineItem, error) {
	return listItems(ctx, r.q, invoiceItems, invoiceID)
}

// MaxNumber mayor contador usado con el prefijo.
func (r *InvoiceRepo) MaxNumber(ctx context.Context, prefix string) (int64, error) {
	return maxNumber(ctx, r.q, "invoices", prefix)
}
