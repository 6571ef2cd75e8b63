package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/auth"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CustomerUC *billing.CustomerUseCase
	PropertyUC *billing.PropertyUseCase
	EstimateUC *billing.EstimateUseCase
	InvoiceUC  *billing.InvoiceUseCase
	PaymentUC  *billing.PaymentUseCase
	PDFUC      *billing.PDFUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	authenticated := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)
	customerOnly := RequireRole(entity.RoleCustomer)

	api := app.Group("/api")

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/users", authenticated, adminOnly, authHandler.CreateUser)

	// Clientes y propiedades (admin)
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.PropertyUC)
	customers := api.Group("/customers", authenticated, adminOnly)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)
	customers.Post("/:id/properties", customerHandler.CreateProperty)
	customers.Get("/:id/properties", customerHandler.ListProperties)

	properties := api.Group("/properties", authenticated, adminOnly)
	properties.Get("/:id", customerHandler.GetProperty)
	properties.Put("/:id", customerHandler.UpdateProperty)
	properties.Delete("/:id", customerHandler.DeleteProperty)

	// Presupuestos (admin)
	estimateHandler := NewEstimateHandler(deps.EstimateUC, deps.PDFUC)
	estimates := api.Group("/estimates", authenticated, adminOnly)
	estimates.Post("/", estimateHandler.Create)
	estimates.Get("/", estimateHandler.List)
	estimates.Get("/:id", estimateHandler.Get)
	estimates.Put("/:id", estimateHandler.Update)
	estimates.Delete("/:id", estimateHandler.Delete)
	estimates.Post("/:id/status", estimateHandler.SetStatus)
	estimates.Post("/:id/convert", estimateHandler.Convert)
	estimates.Get("/:id/activity", estimateHandler.Activity)
	estimates.Get("/:id/pdf", estimateHandler.PDF)

	// Facturas y pagos (admin)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PaymentUC, deps.PDFUC)
	invoices := api.Group("/invoices", authenticated, adminOnly)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Get("/:id/status", invoiceHandler.Status)
	invoices.Get("/:id/balance", invoiceHandler.Balance)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Get("/:id/payments", invoiceHandler.ListPayments)
	invoices.Post("/:id/payments", invoiceHandler.RecordPayment)

	payments := api.Group("/payments", authenticated, adminOnly)
	payments.Put("/:id", invoiceHandler.UpdatePayment)
	payments.Delete("/:id", invoiceHandler.DeletePayment)

	// Portal del cliente (rol customer)
	portalHandler := NewPortalHandler(deps.InvoiceUC, deps.EstimateUC, deps.PDFUC)
	portal := api.Group("/portal", authenticated, customerOnly)
	portal.Get("/invoices", portalHandler.ListInvoices)
	portal.Get("/invoices/:token", portalHandler.GetInvoice)
	portal.Get("/estimates", portalHandler.ListEstimates)
	portal.Get("/estimates/:token", portalHandler.GetEstimate)

	// Enlaces públicos (sin autenticación; el token es la credencial)
	public := app.Group("/public")
	public.Get("/invoices/:token", portalHandler.PublicInvoice)
	public.Get("/invoices/:token/pdf", portalHandler.PublicInvoicePDF)
	public.Get("/estimates/:token", portalHandler.PublicEstimate)
	public.Get("/estimates/:token/pdf", portalHandler.PublicEstimatePDF)
}
