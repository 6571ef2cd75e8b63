package billing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(qty, price string) entity.LineItem {
	return entity.LineItem{Quantity: d(qty), UnitPrice: d(price)}
}

// ──────────────────────────────────────────────────────────────────────────────
// LineTotal y DocumentTotals
// ──────────────────────────────────────────────────────────────────────────────

func TestLineTotal_RedondeaACentavos(t *testing.T) {
	assert.True(t, d("100.00").Equal(billing.LineTotal(d("2"), d("50.00"))))
	assert.True(t, d("0.34").Equal(billing.LineTotal(d("0.333"), d("1.01"))), "0.33633 → 0.34")
	assert.True(t, d("0.01").Equal(billing.LineTotal(d("1"), d("0.005"))), "medio centavo redondea hacia arriba")
	assert.True(t, billing.LineTotal(d("0"), d("99.99")).IsZero())
}

// Escenario de referencia: Labor 2×50 + Paint 1×30 al 10% → 130 / 13 / 143.
func TestDocumentTotals_EscenarioReferencia(t *testing.T) {
	items := []entity.LineItem{line("2", "50.00"), line("1", "30.00")}

	tot := billing.DocumentTotals(items, d("10"))

	assert.Equal(t, "130.00", tot.Subtotal.StringFixed(2))
	assert.Equal(t, "13.00", tot.TaxAmount.StringFixed(2))
	assert.Equal(t, "143.00", tot.Total.StringFixed(2))
}

func TestDocumentTotals_Invariantes(t *testing.T) {
	cases := []struct {
		name  string
		items []entity.LineItem
		rate  string
	}{
		{"sin impuesto", []entity.LineItem{line("3", "19.99")}, "0"},
		{"impuesto entero", []entity.LineItem{line("1.5", "80"), line("2", "0.10")}, "19"},
		{"impuesto fraccional", []entity.LineItem{line("7", "3.33"), line("0.25", "12.50")}, "8.875"},
		{"impuesto máximo", []entity.LineItem{line("1", "10")}, "100"},
		{"sin líneas", nil, "10"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tot := billing.DocumentTotals(tc.items, d(tc.rate))

			sum := decimal.Zero
			for _, it := range tc.items {
				sum = sum.Add(billing.LineTotal(it.Quantity, it.UnitPrice))
			}
			assert.True(t, sum.Equal(tot.Subtotal), "subtotal = Σ line.total")
			assert.True(t, tot.Subtotal.Mul(d(tc.rate)).Div(d("100")).Round(2).Equal(tot.TaxAmount),
				"tax = round(subtotal × rate / 100, 2)")
			assert.True(t, tot.Subtotal.Add(tot.TaxAmount).Equal(tot.Total), "total = subtotal + tax")
		})
	}
}

// Un valor que cabe en la escala de la columna conserva el invariante
// tax = round(subtotal × rate / 100, 2) tras guardarse.
func TestValidateScale(t *testing.T) {
	cases := []struct {
		value  string
		places int32
		ok     bool
	}{
		{"0.33", billing.CurrencyPlaces, true},
		{"0.330", billing.CurrencyPlaces, true},
		{"0.333", billing.CurrencyPlaces, false},
		{"1.005", billing.CurrencyPlaces, false},
		{"0.3333", billing.QuantityPlaces, true},
		{"0.33333", billing.QuantityPlaces, false},
		{"8.875", billing.RatePlaces, true},
		{"100", billing.CurrencyPlaces, true},
	}
	for _, tc := range cases {
		err := billing.ValidateScale("campo", d(tc.value), tc.places)
		if tc.ok {
			assert.NoError(t, err, tc.value)
			continue
		}
		require.Error(t, err, tc.value)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "campo", ve.Field)
	}

	// lo que pasa la validación no cambia al redondear a la escala de la columna
	rate := d("8.875")
	require.NoError(t, billing.ValidateTaxRate(rate))
	tot := billing.DocumentTotals([]entity.LineItem{line("1", "1000.00")}, rate)
	stored := rate.Round(billing.RatePlaces)
	assert.True(t, tot.Subtotal.Mul(stored).Div(d("100")).Round(2).Equal(tot.TaxAmount))
	assert.Equal(t, "88.75", tot.TaxAmount.StringFixed(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos y saldo
// ──────────────────────────────────────────────────────────────────────────────

func TestBalanceDue_PuedeSerNegativo(t *testing.T) {
	payments := []entity.Payment{{Amount: d("100")}, {Amount: d("50")}}

	assert.True(t, d("150").Equal(billing.SumPayments(payments)))
	assert.True(t, d("-7").Equal(billing.BalanceDue(d("143"), payments)), "sobrepago queda como saldo a favor")
	assert.True(t, d("143").Equal(billing.BalanceDue(d("143"), nil)))
}

func TestValidateTaxRate(t *testing.T) {
	require.NoError(t, billing.ValidateTaxRate(d("0")))
	require.NoError(t, billing.ValidateTaxRate(d("100")))
	require.NoError(t, billing.ValidateTaxRate(d("8.25")))

	require.NoError(t, billing.ValidateTaxRate(d("8.875")))
	require.NoError(t, billing.ValidateTaxRate(d("8.87500")), "ceros finales no cuentan")

	for _, bad := range []string{"-0.01", "100.01", "250", "8.87501"} {
		err := billing.ValidateTaxRate(d(bad))
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "tax_rate", ve.Field)
	}
}
