package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

var _ repository.PropertyRepository = (*PropertyRepo)(nil)

const propertyColumns = `id, customer_id, name, address, type, active, created_at, updated_at`

// PropertyRepo implementación de PropertyRepository (usable con pool o tx).
type PropertyRepo struct {
	q Querier
}

// NewPropertyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPropertyRepository(q Querier) *PropertyRepo {
	return &PropertyRepo{q: q}
}

func scanProperty(row pgx.Row) (*entity.Property, error) {
	var p entity.Property
	if err := row.Scan(&p.ID, &p.CustomerID, &p.Name, &p.Address, &p.Type, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste una propiedad.
func (r *PropertyRepo) Create(ctx context.Context, p *entity.Property) error {
	query := `
		INSERT INTO properties (` + propertyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CustomerID, p.Name, p.Address, p.Type, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("customer_id", "el cliente no existe")
		}
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

// GetByID obtiene una propiedad por ID.
func (r *PropertyRepo) GetByID(ctx context.Context, id string) (*entity.Property, error) {
	p, err := scanProperty(r.q.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

// ListByCustomer lista las propiedades de un cliente.
func (r *PropertyRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE customer_id = $1 ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()
	var list []*entity.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza una propiedad. El cliente dueño no cambia.
func (r *PropertyRepo) Update(ctx context.Context, p *entity.Property) error {
	query := `
		UPDATE properties SET name = $2, address = $3, type = $4, active = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Address, p.Type, p.Active, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// Delete elimina una propiedad; las facturas que la referencian lo impiden.
func (r *PropertyRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.InvalidState("la propiedad tiene facturas")
		}
		return fmt.Errorf("delete property: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// CountInvoices cuenta las facturas que referencian la propiedad.
func (r *PropertyRepo) CountInvoices(ctx context.Context, propertyID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE property_id = $1`, propertyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count property invoices: %w", err)
	}
	return n, nil
}
