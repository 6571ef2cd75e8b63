package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// Page paginación común a los listados.
type Page struct {
	Limit  int
	Offset int
}

// CustomerRepository define el puerto de persistencia para Customer.
// Los métodos Get devuelven domain.ErrNotFound cuando la fila no existe.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	List(ctx context.Context, page Page) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	// Delete borra el cliente; sus propiedades, presupuestos y usuarios de portal
	// caen en cascada en la base de datos.
	Delete(ctx context.Context, id string) error
	// CountInvoices cuenta las facturas del cliente (guarda de borrado).
	CountInvoices(ctx context.Context, customerID string) (int, error)
}
