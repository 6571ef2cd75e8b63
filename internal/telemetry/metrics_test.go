package telemetry_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/telemetry"
)

func TestMetrics_Negocio(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics("test", reg)

	m.DocumentCreated(billing.KindInvoice)
	m.DocumentCreated(billing.KindInvoice)
	m.DocumentCreated(billing.KindEstimate)
	m.EstimateConverted()
	m.IdentifierRetry(billing.KindEstimate)
	m.PaymentRecorded(decimal.RequireFromString("100.00"))
	m.PaymentRecorded(decimal.RequireFromString("43.00"))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_billing_documents_created_total")
	assert.Contains(t, names, "test_billing_payments_amount_total")

	expected := `
# HELP test_billing_estimates_converted_total Presupuestos convertidos en factura
# TYPE test_billing_estimates_converted_total counter
test_billing_estimates_converted_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_billing_estimates_converted_total"))

	expected = `
# HELP test_billing_payments_amount_total Importe acumulado de pagos registrados
# TYPE test_billing_payments_amount_total counter
test_billing_payments_amount_total 143
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_billing_payments_amount_total"))
}

func TestMetrics_HTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics("test", reg)

	m.ObserveRequest(http.MethodGet, "/api/invoices/:id", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/invoices/:id", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/invoices/:id", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2, mustCount(t, reg, "test_http_requests_total"))
}

func mustCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	return n
}
