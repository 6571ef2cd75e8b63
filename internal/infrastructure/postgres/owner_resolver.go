package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/domain"
)

var _ access.OwnerResolver = (*OwnerResolver)(nil)

// ownerQueries resuelve el cliente dueño de cada tipo de recurso.
// Propiedad → su cliente; pago → cliente de su factura.
var ownerQueries = map[access.ResourceKind]string{
	access.ResourceCustomer: `SELECT id FROM customers WHERE id = $1`,
	access.ResourceProperty: `SELECT customer_id FROM properties WHERE id = $1`,
	access.ResourceEstimate: `SELECT customer_id FROM estimates WHERE id = $1`,
	access.ResourceInvoice:  `SELECT customer_id FROM invoices WHERE id = $1`,
	access.ResourcePayment: `
		SELECT i.customer_id FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE p.id = $1`,
}

// OwnerResolver implementa access.OwnerResolver con una consulta por tipo.
type OwnerResolver struct {
	q Querier
}

// NewOwnerResolver construye el resolvedor sobre pool o tx.
func NewOwnerResolver(q Querier) *OwnerResolver {
	return &OwnerResolver{q: q}
}

// OwnerOf devuelve el customer_id dueño del recurso o domain.ErrNotFound.
func (r *OwnerResolver) OwnerOf(ctx context.Context, kind access.ResourceKind, id string) (string, error) {
	query, ok := ownerQueries[kind]
	if !ok {
		return "", fmt.Errorf("owner of %q: tipo de recurso desconocido", kind)
	}
	var owner string
	if err := r.q.QueryRow(ctx, query, id).Scan(&owner); err != nil {
		if isNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("owner of %s: %w", kind, err)
	}
	return owner, nil
}
