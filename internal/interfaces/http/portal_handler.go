package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
)

// PortalHandler vistas del cliente autenticado y enlaces públicos por token.
// Ninguna respuesta expone el id interno de los documentos.
type PortalHandler struct {
	invoices  *billing.InvoiceUseCase
	estimates *billing.EstimateUseCase
	pdf       *billing.PDFUseCase
}

// NewPortalHandler construye el handler.
func NewPortalHandler(invoices *billing.InvoiceUseCase, estimates *billing.EstimateUseCase, pdf *billing.PDFUseCase) *PortalHandler {
	return &PortalHandler{invoices: invoices, estimates: estimates, pdf: pdf}
}

// ListInvoices GET /api/portal/invoices
func (h *PortalHandler) ListInvoices(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	list, err := h.invoices.ListPublic(c.UserContext(), PrincipalFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetInvoice GET /api/portal/invoices/:token
func (h *PortalHandler) GetInvoice(c *fiber.Ctx) error {
	out, err := h.invoices.GetByTokenFor(c.UserContext(), PrincipalFrom(c), c.Params("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListEstimates GET /api/portal/estimates
func (h *PortalHandler) ListEstimates(c *fiber.Ctx) error {
	var q dto.EstimateListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	list, err := h.estimates.ListPublic(c.UserContext(), PrincipalFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetEstimate GET /api/portal/estimates/:token
func (h *PortalHandler) GetEstimate(c *fiber.Ctx) error {
	out, err := h.estimates.GetByTokenFor(c.UserContext(), PrincipalFrom(c), c.Params("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PublicInvoice godoc
// @Summary      Factura por enlace público
// @Tags         public
// @Produce      json
// @Param        token  path  string  true  "token público"
// @Success      200    {object}  dto.PublicInvoiceResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /public/invoices/{token} [get]
func (h *PortalHandler) PublicInvoice(c *fiber.Ctx) error {
	out, err := h.invoices.GetByToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PublicInvoicePDF GET /public/invoices/:token/pdf
func (h *PortalHandler) PublicInvoicePDF(c *fiber.Ctx) error {
	b, name, err := h.pdf.PublicInvoicePDF(c.UserContext(), c.Params("token"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, b, name)
}

// PublicEstimate GET /public/estimates/:token
func (h *PortalHandler) PublicEstimate(c *fiber.Ctx) error {
	out, err := h.estimates.GetByToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PublicEstimatePDF GET /public/estimates/:token/pdf
func (h *PortalHandler) PublicEstimatePDF(c *fiber.Ctx) error {
	b, name, err := h.pdf.PublicEstimatePDF(c.UserContext(), c.Params("token"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, b, name)
}
