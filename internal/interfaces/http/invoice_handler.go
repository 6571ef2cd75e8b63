package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
)

// InvoiceHandler maneja facturas y sus pagos.
type InvoiceHandler struct {
	uc       *billing.InvoiceUseCase
	payments *billing.PaymentUseCase
	pdf      *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, payments *billing.PaymentUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, payments: payments, pdf: pdf}
}

// Create godoc
// @Summary      Crear factura
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.InvoiceRequest  true  "factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/invoices?customer_id=&status=&limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.List(c.UserContext(), PrincipalFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Get GET /api/invoices/:id
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Status GET /api/invoices/:id/status
func (h *InvoiceHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.ResolveStatus(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Balance GET /api/invoices/:id/balance. Un saldo negativo es crédito del cliente.
func (h *InvoiceHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.ComputeBalance(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PDF GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	b, name, err := h.pdf.InvoicePDF(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, b, name)
}

// RecordPayment godoc
// @Summary      Registrar pago
// @Description  Recalcula el estado de la factura en la misma transacción.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "ID de la factura"
// @Param        body  body  dto.PaymentRequest  true  "pago"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.payments.Record(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPayments GET /api/invoices/:id/payments
func (h *InvoiceHandler) ListPayments(c *fiber.Ctx) error {
	list, err := h.payments.List(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// UpdatePayment PUT /api/payments/:id
func (h *InvoiceHandler) UpdatePayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.payments.Update(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeletePayment DELETE /api/payments/:id. Devuelve el estado resultante de la factura.
func (h *InvoiceHandler) DeletePayment(c *fiber.Ctx) error {
	out, err := h.payments.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func sendPDF(c *fiber.Ctx, b []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(b)
}
