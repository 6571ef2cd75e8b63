package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para pagos.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, id string) error
	// SumByInvoice devuelve Σ amount de la factura (0 si no hay pagos).
	SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error)
}
