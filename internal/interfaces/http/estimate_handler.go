package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// EstimateHandler maneja presupuestos: CRUD, transiciones, conversión y PDF.
type EstimateHandler struct {
	uc  *billing.EstimateUseCase
	pdf *billing.PDFUseCase
}

// NewEstimateHandler construye el handler.
func NewEstimateHandler(uc *billing.EstimateUseCase, pdf *billing.PDFUseCase) *EstimateHandler {
	return &EstimateHandler{uc: uc, pdf: pdf}
}

// Create godoc
// @Summary      Crear presupuesto
// @Description  Asigna número y token. Con new_customer crea el cliente en la misma transacción.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.EstimateRequest  true  "presupuesto"
// @Success      201   {object}  dto.EstimateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/estimates [post]
func (h *EstimateHandler) Create(c *fiber.Ctx) error {
	var in dto.EstimateRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/estimates?customer_id=&status=&limit=&offset=
func (h *EstimateHandler) List(c *fiber.Ctx) error {
	var q dto.EstimateListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	list, err := h.uc.List(c.UserContext(), PrincipalFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Get GET /api/estimates/:id
func (h *EstimateHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/estimates/:id. Solo en Draft o Sent.
func (h *EstimateHandler) Update(c *fiber.Ctx) error {
	var in dto.EstimateRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/estimates/:id
func (h *EstimateHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetStatus godoc
// @Summary      Cambiar estado del presupuesto
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                     true  "ID del presupuesto"
// @Param        body  body  dto.EstimateStatusRequest  true  "Sent, Approved o Rejected"
// @Success      200   {object}  dto.EstimateResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estimates/{id}/status [post]
func (h *EstimateHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.EstimateStatusRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SetStatus(c.UserContext(), PrincipalFrom(c), c.Params("id"), entity.EstimateStatus(in.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Convert godoc
// @Summary      Convertir presupuesto aprobado en factura
// @Tags         estimates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del presupuesto"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/estimates/{id}/convert [post]
func (h *EstimateHandler) Convert(c *fiber.Ctx) error {
	out, err := h.uc.Convert(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Activity GET /api/estimates/:id/activity
func (h *EstimateHandler) Activity(c *fiber.Ctx) error {
	list, err := h.uc.Activity(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// PDF GET /api/estimates/:id/pdf
func (h *EstimateHandler) PDF(c *fiber.Ctx) error {
	b, name, err := h.pdf.EstimatePDF(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, b, name)
}
