package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// PropertyRepository define el puerto de persistencia para Property.
type PropertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	GetByID(ctx context.Context, id string) (*entity.Property, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Property, error)
	Update(ctx context.Context, property *entity.Property) error
	Delete(ctx context.Context, id string) error
	// CountInvoices cuenta las facturas que referencian la propiedad.
	CountInvoices(ctx context.Context, propertyID string) (int, error)
}
