package entity

import "github.com/shopspring/decimal"

// LineItem es una línea (descripción × cantidad × precio) de un presupuesto o factura.
// Total se guarda redundante para conservar el importe cotizado.
type LineItem struct {
	ID          string
	DocumentID  string // estimate_id o invoice_id según la tabla
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}
