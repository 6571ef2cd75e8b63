package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago sugeridos; se aceptan etiquetas libres.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCheck        = "check"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodOther        = "other"
)

// Payment registra dinero recibido contra una factura.
type Payment struct {
	ID          string
	InvoiceID   string
	Amount      decimal.Decimal
	Method      string
	PaymentDate time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
