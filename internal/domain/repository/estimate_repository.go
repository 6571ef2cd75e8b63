package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// EstimateFilter filtros de listado. Campos vacíos no filtran.
type EstimateFilter struct {
	CustomerID string
	Status     entity.EstimateStatus
	Page
}

// EstimateRepository define el puerto de persistencia para presupuestos,
// sus líneas y su bitácora de actividad.
type EstimateRepository interface {
	// Create inserta la cabecera. Una colisión de número o token devuelve
	// domain.ErrConflict sin abortar la transacción del llamador.
	Create(ctx context.Context, estimate *entity.Estimate) error
	GetByID(ctx context.Context, id string) (*entity.Estimate, error)
	GetByToken(ctx context.Context, token string) (*entity.Estimate, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error)
	List(ctx context.Context, filter EstimateFilter) ([]*entity.Estimate, error)
	Update(ctx context.Context, estimate *entity.Estimate) error
	UpdateStatus(ctx context.Context, id string, status entity.EstimateStatus) error
	Delete(ctx context.Context, id string) error

	// ReplaceItems borra y reinserta todas las líneas del presupuesto.
	ReplaceItems(ctx context.Context, estimateID string, items []entity.LineItem) error
	ListItems(ctx context.Context, estimateID string) ([]entity.LineItem, error)

	// MaxNumber devuelve el mayor contador numérico usado con el prefijo (0 si no hay).
	MaxNumber(ctx context.Context, prefix string) (int64, error)

	// SetConvertedInvoice fija el enlace de conversión solo si está vacío;
	// si ya estaba fijado devuelve domain.ErrInvalidState.
	SetConvertedInvoice(ctx context.Context, estimateID, invoiceID string) error

	AppendActivity(ctx context.Context, entry *entity.ActivityEntry) error
	ListActivity(ctx context.Context, estimateID string) ([]entity.ActivityEntry, error)

	// ListOverdue devuelve los Draft/Sent cuya fecha de expiración es anterior a today.
	ListOverdue(ctx context.Context, today time.Time) ([]*entity.Estimate, error)
}
