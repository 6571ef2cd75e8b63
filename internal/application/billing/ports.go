package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// Repos agrupa los repositorios de facturación. Fuera de una transacción están
// respaldados por el pool; dentro de RunBilling, por la transacción en curso.
type Repos struct {
	Customers  repository.CustomerRepository
	Properties repository.PropertyRepository
	Estimates  repository.EstimateRepository
	Invoices   repository.InvoiceRepository
	Payments   repository.PaymentRepository
}

// TxRunner ejecuta fn dentro de una única transacción. Si fn devuelve error se hace
// rollback completo; si no, commit.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(r Repos) error) error
}

// Authorizer decide si un principal puede ejecutar una acción (access.Guard).
type Authorizer interface {
	Authorize(ctx context.Context, p access.Principal, action access.Action, ref access.ResourceRef) error
}

// Metrics contadores de negocio. Puede ser nil.
type Metrics interface {
	DocumentCreated(kind DocumentKind)
	EstimateConverted()
	PaymentRecorded(amount decimal.Decimal)
	IdentifierRetry(kind DocumentKind)
}

type noopMetrics struct{}

func (noopMetrics) DocumentCreated(DocumentKind)    {}
func (noopMetrics) EstimateConverted()              {}
func (noopMetrics) PaymentRecorded(decimal.Decimal) {}
func (noopMetrics) IdentifierRetry(DocumentKind)    {}

// Settings parámetros de facturación (vienen de pkg/config).
type Settings struct {
	DefaultTaxRate      decimal.Decimal
	PaymentTermsDays    int
	EstimateValidDays   int
	InvoicePrefix       string
	EstimatePrefix      string
	NumberWidth         int
	BusinessName        string
	PaymentInstructions string
}

// DefaultSettings valores por defecto: 30 días de plazo y de validez, INV/EST con 6 dígitos.
func DefaultSettings() Settings {
	return Settings{
		DefaultTaxRate:    decimal.Zero,
		PaymentTermsDays:  30,
		EstimateValidDays: 30,
		InvoicePrefix:     "INV",
		EstimatePrefix:    "EST",
		NumberWidth:       6,
	}
}

// PDFGenerator genera la representación gráfica de los documentos.
type PDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
	GenerateEstimatePDF(ctx context.Context, doc EstimateDocument) ([]byte, error)
}

// InvoiceDocument datos completos de una factura para renderizar.
type InvoiceDocument struct {
	Invoice             *entity.Invoice
	Customer            *entity.Customer
	Property            *entity.Property
	Items               []entity.LineItem
	Payments            []entity.Payment
	AmountPaid          decimal.Decimal
	BalanceDue          decimal.Decimal
	BusinessName        string
	PaymentInstructions string
}

// EstimateDocument datos completos de un presupuesto para renderizar.
type EstimateDocument struct {
	Estimate     *entity.Estimate
	Status       entity.EstimateStatus // estado efectivo (con expiración aplicada)
	Customer     *entity.Customer
	Property     *entity.Property
	Items        []entity.LineItem
	BusinessName string
}

// Deps dependencias comunes de los casos de uso de facturación.
type Deps struct {
	Repos    Repos
	Tx       TxRunner
	Guard    Authorizer
	IDs      *IdentifierGenerator
	Settings Settings
	Metrics  Metrics
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Settings.NumberWidth <= 0 {
		d.Settings.NumberWidth = DefaultSettings().NumberWidth
	}
	return d
}
