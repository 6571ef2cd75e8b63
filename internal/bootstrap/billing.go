// Package bootstrap arma los casos de uso de facturación sobre PostgreSQL.
// Lo comparten cmd/api y cmd/seed.
package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/auth"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	infrapdf "github.com/jhoicas/Facturacion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// Billing casos de uso listos para inyectar en el router.
type Billing struct {
	Auth       *auth.AuthUseCase
	Customers  *billing.CustomerUseCase
	Properties *billing.PropertyUseCase
	Estimates  *billing.EstimateUseCase
	Invoices   *billing.InvoiceUseCase
	Payments   *billing.PaymentUseCase
	PDF        *billing.PDFUseCase
}

// SettingsFromConfig traduce la configuración de facturación.
func SettingsFromConfig(c config.BillingConfig) billing.Settings {
	return billing.Settings{
		DefaultTaxRate:      c.DefaultTaxRate,
		PaymentTermsDays:    c.PaymentTermsDays,
		EstimateValidDays:   c.EstimateValidDays,
		InvoicePrefix:       c.InvoicePrefix,
		EstimatePrefix:      c.EstimatePrefix,
		NumberWidth:         c.NumberWidth,
		BusinessName:        c.BusinessName,
		PaymentInstructions: c.PaymentInstructions,
	}
}

// NewBilling construye repositorios, guard, generador de números y casos de uso.
// metrics puede ser nil.
func NewBilling(pool *pgxpool.Pool, cfg *config.Config, metrics billing.Metrics, log *logger.Logger) (*Billing, error) {
	lang, err := cfg.Billing.Language()
	if err != nil {
		return nil, err
	}

	repos := postgres.NewBillingRepos(pool)
	settings := SettingsFromConfig(cfg.Billing)
	deps := billing.Deps{
		Repos:    repos,
		Tx:       postgres.NewTxRunner(pool),
		Guard:    access.NewGuard(postgres.NewOwnerResolver(pool), log.Component("access")),
		IDs:      billing.NewIdentifierGenerator(settings, billing.DefaultMaxAttempts, metrics, log.Component("identifier")),
		Settings: settings,
		Metrics:  metrics,
	}

	billingLog := log.Component("billing")
	b := &Billing{
		Customers:  billing.NewCustomerUseCase(deps),
		Properties: billing.NewPropertyUseCase(deps),
		Estimates:  billing.NewEstimateUseCase(deps, billingLog),
		Invoices:   billing.NewInvoiceUseCase(deps, billingLog),
		Payments:   billing.NewPaymentUseCase(deps, billingLog),
	}
	b.PDF = billing.NewPDFUseCase(b.Invoices, b.Estimates, infrapdf.NewMarotoPDFGenerator(infrapdf.Options{
		Language:       lang,
		CurrencySymbol: cfg.Billing.CurrencySymbol,
		PublicBaseURL:  cfg.Billing.PublicBaseURL,
	}))
	b.Auth = auth.NewAuthUseCase(postgres.NewUserRepository(pool), repos.Customers, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	return b, nil
}
