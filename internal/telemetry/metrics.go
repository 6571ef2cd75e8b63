// Package telemetry expone métricas Prometheus de negocio y de HTTP.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
)

var _ billing.Metrics = (*Metrics)(nil)

// Metrics agrupa los collectors de la aplicación.
type Metrics struct {
	documentsCreated   *prometheus.CounterVec
	estimatesConverted prometheus.Counter
	paymentsRecorded   prometheus.Counter
	paymentsAmount     prometheus.Counter
	identifierRetries  *prometheus.CounterVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics crea y registra las métricas en reg (nil = registro global).
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "facturacion"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// =====================================================================
		// Documentos
		// =====================================================================
		documentsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "documents_created_total",
				Help:      "Presupuestos y facturas creados",
			},
			[]string{"kind"},
		),
		estimatesConverted: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "estimates_converted_total",
				Help:      "Presupuestos convertidos en factura",
			},
		),
		identifierRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "identifier_retries_total",
				Help:      "Reintentos por colisión de número de documento",
			},
			[]string{"kind"},
		),

		// =====================================================================
		// Pagos
		// =====================================================================
		paymentsRecorded: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "payments_recorded_total",
				Help:      "Pagos registrados",
			},
		),
		paymentsAmount: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "payments_amount_total",
				Help:      "Importe acumulado de pagos registrados",
			},
		),

		// =====================================================================
		// HTTP
		// =====================================================================
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total de peticiones HTTP",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duración de las peticiones HTTP en segundos",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path", "status"},
		),
	}
}

// DocumentCreated cuenta un presupuesto o factura nuevo.
func (m *Metrics) DocumentCreated(kind billing.DocumentKind) {
	m.documentsCreated.WithLabelValues(string(kind)).Inc()
}

// EstimateConverted cuenta una conversión.
func (m *Metrics) EstimateConverted() {
	m.estimatesConverted.Inc()
}

// PaymentRecorded cuenta el pago y suma su importe.
func (m *Metrics) PaymentRecorded(amount decimal.Decimal) {
	m.paymentsRecorded.Inc()
	if f := amount.InexactFloat64(); f > 0 {
		m.paymentsAmount.Add(f)
	}
}

// IdentifierRetry cuenta un reintento de numeración.
func (m *Metrics) IdentifierRetry(kind billing.DocumentKind) {
	m.identifierRetries.WithLabelValues(string(kind)).Inc()
}

// ObserveRequest registra una petición HTTP. path debe ser la ruta con parámetros
// (/api/invoices/:id), no la URL concreta.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	s := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, path, s).Inc()
	m.requestDuration.WithLabelValues(method, path, s).Observe(elapsed.Seconds())
}
