package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// InvoiceFilter filtros de listado. Campos vacíos no filtran.
type InvoiceFilter struct {
	CustomerID string
	Status     entity.InvoiceStatus
	Page
}

// InvoiceRepository define el puerto de persistencia para facturas y sus líneas.
type InvoiceRepository interface {
	// Create inserta la cabecera; colisión de número o token → domain.ErrConflict.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByToken(ctx context.Context, token string) (*entity.Invoice, error)
	// GetForUpdate bloquea la factura; serializa pagos concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	// UpdateStatus actualiza la columna de estado (caché para filtros).
	UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus) error
	Delete(ctx context.Context, id string) error

	ReplaceItems(ctx context.Context, invoiceID string, items []entity.LineItem) error
	ListItems(ctx context.Context, invoiceID string) ([]entity.LineItem, error)

	MaxNumber(ctx context.Context, prefix string) (int64, error)
}
