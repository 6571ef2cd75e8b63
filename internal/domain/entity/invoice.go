package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado derivado de una factura según sus pagos.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPartial InvoiceStatus = "Partial"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
)

// Invoice representa la cabecera de una factura.
// Status es una caché para listados; la fuente de verdad es el cálculo sobre los pagos.
type Invoice struct {
	ID          string
	CustomerID  string
	PropertyID  *string
	EstimateID  *string // presupuesto de origen si vino de una conversión
	Number      string  // INV-000001
	PublicToken string
	IssueDate   time.Time
	DueDate     time.Time
	Subtotal    decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
	Notes       string
	Status      InvoiceStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
