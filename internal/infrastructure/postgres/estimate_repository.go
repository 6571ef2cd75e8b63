package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.EstimateRepository = (*EstimateRepo)(nil)

const estimateColumns = `
	id, customer_id, property_id, number, public_token, issue_date, expires_date,
	subtotal, tax_rate, tax_amount, total, notes, terms, status, converted_invoice_id,
	created_at, updated_at`

// EstimateRepo implementación de EstimateRepository (usable con pool o tx).
type EstimateRepo struct {
	q Querier
}

// NewEstimateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEstimateRepository(q Querier) *EstimateRepo {
	return &EstimateRepo{q: q}
}

func scanEstimate(row pgx.Row) (*entity.Estimate, error) {
	var e entity.Estimate
	err := row.Scan(
		&e.ID, &e.CustomerID, &e.PropertyID, &e.Number, &e.PublicToken, &e.IssueDate, &e.ExpiresDate,
		&e.Subtotal, &e.TaxRate, &e.TaxAmount, &e.Total, &e.Notes, &e.Terms, &e.Status, &e.ConvertedInvoiceID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EstimateRepo) getOne(ctx context.Context, query string, arg any) (*entity.Estimate, error) {
	e, err := scanEstimate(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get estimate: %w", err)
	}
	return e, nil
}

// Create persiste la cabecera en un savepoint; número o token repetido → ErrConflict.
func (r *EstimateRepo) Create(ctx context.Context, e *entity.Estimate) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO estimates (` + estimateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	return withSavepoint(ctx, r.q, func(q Querier) error {
		_, err := q.Exec(ctx, query,
			e.ID, e.CustomerID, e.PropertyID, e.Number, e.PublicToken, e.IssueDate, e.ExpiresDate,
			e.Subtotal, e.TaxRate, e.TaxAmount, e.Total, e.Notes, e.Terms, e.Status, e.ConvertedInvoiceID,
			e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("estimate number %s: %w", e.Number, domain.ErrConflict)
			}
			return fmt.Errorf("insert estimate: %w", err)
		}
		return nil
	})
}

// GetByID obtiene un presupuesto por ID.
func (r *EstimateRepo) GetByID(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id)
}

// GetByToken obtiene un presupuesto por su token público.
func (r *EstimateRepo) GetByToken(ctx context.Context, token string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE public_token = $1`, token)
}

// GetForUpdate obtiene y bloquea la fila hasta el fin de la transacción.
func (r *EstimateRepo) GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1 FOR UPDATE`, id)
}

// List lista presupuestos, más recientes primero.
func (r *EstimateRepo) List(ctx context.Context, f repository.EstimateFilter) ([]*entity.Estimate, error) {
	var w listWhere
	if f.CustomerID != "" {
		w.add("customer_id = $%d", f.CustomerID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	query := `SELECT ` + estimateColumns + ` FROM estimates` + w.sql() + ` ORDER BY issue_date DESC, number DESC`
	query += w.page(f.Page)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	defer rows.Close()
	var list []*entity.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update actualiza los campos editables. Número, token y enlace de conversión no cambian.
func (r *EstimateRepo) Update(ctx context.Context, e *entity.Estimate) error {
	query := `
		UPDATE estimates
		SET customer_id  = $2,
		    property_id  = $3,
		    issue_date   = $4,
		    expires_date = $5,
		    subtotal     = $6,
		    tax_rate     = $7,
		    tax_amount   = $8,
		    total        = $9,
		    notes        = $10,
		    terms        = $11,
		    status       = $12,
		    updated_at   = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		e.ID, e.CustomerID, e.PropertyID, e.IssueDate, e.ExpiresDate,
		e.Subtotal, e.TaxRate, e.TaxAmount, e.Total, e.Notes, e.Terms, e.Status, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update estimate: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// UpdateStatus cambia solo el estado.
func (r *EstimateRepo) UpdateStatus(ctx context.Context, id string, status entity.EstimateStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE estimates SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update estimate status: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// Delete elimina el presupuesto; líneas y actividad caen en cascada.
func (r *EstimateRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM estimates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// ReplaceItems reemplaza todas las líneas del presupuesto.
func (r *EstimateRepo) ReplaceItems(ctx context.Context, estimateID string, items []entity.LineItem) error {
	return replaceItems(ctx, r.q, estimateItems, estimateID, items)
}

// ListItems devuelve las líneas del presupuesto.
func (r *EstimateRepo) ListItems(ctx context.Context, estimateID string) ([]entity.LineItem, error) {
	return listItems(ctx, r.q, estimateItems, estimateID)
}

// MaxNumber mayor contador usado con el prefijo.
func (r *EstimateRepo) MaxNumber(ctx context.Context, prefix string) (int64, error) {
	return maxNumber(ctx, r.q, "estimates", prefix)
}

// SetConvertedInvoice fija el enlace solo si está vacío. La condición en el WHERE
// hace que de dos conversiones concurrentes solo una afecte la fila.
func (r *EstimateRepo) SetConvertedInvoice(ctx context.Context, estimateID, invoiceID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE estimates SET converted_invoice_id = $2, updated_at = now()
		WHERE id = $1 AND converted_invoice_id IS NULL`, estimateID, invoiceID)
	if err != nil {
		return fmt.Errorf("set converted invoice: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM estimates WHERE id = $1)`, estimateID).Scan(&exists); err != nil {
		return fmt.Errorf("check estimate: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.InvalidState("el presupuesto ya fue convertido")
}

// AppendActivity agrega una entrada al historial.
func (r *EstimateRepo) AppendActivity(ctx context.Context, a *entity.ActivityEntry) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO estimate_activity (id, estimate_id, action, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.EstimateID, a.Action, a.Description, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert estimate activity: %w", err)
	}
	return nil
}

// ListActivity devuelve el historial en orden cronológico.
func (r *EstimateRepo) ListActivity(ctx context.Context, estimateID string) ([]entity.ActivityEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, estimate_id, action, description, created_at
		FROM estimate_activity WHERE estimate_id = $1 ORDER BY created_at, id`, estimateID)
	if err != nil {
		return nil, fmt.Errorf("list estimate activity: %w", err)
	}
	defer rows.Close()
	list := []entity.ActivityEntry{}
	for rows.Next() {
		var a entity.ActivityEntry
		if err := rows.Scan(&a.ID, &a.EstimateID, &a.Action, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan estimate activity: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListOverdue devuelve los Draft/Sent con expires_date anterior a today.
func (r *EstimateRepo) ListOverdue(ctx context.Context, today time.Time) ([]*entity.Estimate, error) {
	query := `
		SELECT ` + estimateColumns + ` FROM estimates
		WHERE status IN ('Draft', 'Sent') AND expires_date < $1::date
		ORDER BY expires_date, number`
	rows, err := r.q.Query(ctx, query, today)
	if err != nil {
		return nil, fmt.Errorf("list overdue estimates: %w", err)
	}
	defer rows.Close()
	var list []*entity.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
