package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente al que se le emiten presupuestos y facturas.
type Customer struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	HourlyRate *decimal.Decimal // tarifa por hora propia; nil = tarifa por defecto
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
