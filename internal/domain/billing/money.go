// Package billing contiene las reglas puras de facturación: cálculo de importes
// y derivación de estados. No accede a la base de datos.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// Escalas máximas admitidas; coinciden con las columnas NUMERIC del esquema.
const (
	CurrencyPlaces = 2 // importes y precios unitarios (centavos)
	QuantityPlaces = 4
	RatePlaces     = 4 // porcentaje de impuesto
)

var (
	hundred = decimal.NewFromInt(100)
)

// Totals importes derivados de un documento.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal = round(qty * price, 2).
func LineTotal(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price).Round(CurrencyPlaces)
}

// DocumentTotals calcula subtotal, impuesto y total. El porcentaje de impuesto
// debe validarse antes (ValidateTaxRate); aquí no se recorta.
func DocumentTotals(items []entity.LineItem, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it.Quantity, it.UnitPrice))
	}
	return totalsFromSubtotal(subtotal, taxRatePercent)
}

func totalsFromSubtotal(subtotal, taxRatePercent decimal.Decimal) Totals {
	tax := subtotal.Mul(taxRatePercent).Div(hundred).Round(CurrencyPlaces)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// SumPayments suma los importes de los pagos.
func SumPayments(payments []entity.Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// BalanceDue = total - Σ pagos. Puede ser negativo (saldo a favor del cliente).
func BalanceDue(invoiceTotal decimal.Decimal, payments []entity.Payment) decimal.Decimal {
	return invoiceTotal.Sub(SumPayments(payments))
}

// ValidateTaxRate exige un porcentaje en [0, 100] con a lo sumo RatePlaces decimales.
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return domain.Invalid("tax_rate", "debe estar entre 0 y 100")
	}
	return ValidateScale("tax_rate", rate, RatePlaces)
}

// ValidateScale rechaza valores con más de places decimales significativos.
// Postgres redondearía en silencio al guardarlos.
func ValidateScale(field string, v decimal.Decimal, places int32) error {
	if !v.Equal(v.Truncate(places)) {
		return domain.Invalid(field, "admite como máximo %d decimales", places)
	}
	return nil
}
