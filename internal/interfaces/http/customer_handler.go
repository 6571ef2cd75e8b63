package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
)

// CustomerHandler maneja clientes y sus propiedades (solo admin).
type CustomerHandler struct {
	customers  *billing.CustomerUseCase
	properties *billing.PropertyUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(customers *billing.CustomerUseCase, properties *billing.PropertyUseCase) *CustomerHandler {
	return &CustomerHandler{customers: customers, properties: properties}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.customers.Create(c.UserContext(), PrincipalFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/customers?limit=20&offset=0
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := parseQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	list, err := h.customers.List(c.UserContext(), PrincipalFrom(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Get GET /api/customers/:id
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	out, err := h.customers.Get(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.customers.Update(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/customers/:id. Falla con 409 si el cliente tiene facturas.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.customers.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateProperty POST /api/customers/:id/properties
func (h *CustomerHandler) CreateProperty(c *fiber.Ctx) error {
	var in dto.PropertyRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.properties.Create(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProperties GET /api/customers/:id/properties
func (h *CustomerHandler) ListProperties(c *fiber.Ctx) error {
	list, err := h.properties.ListByCustomer(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetProperty GET /api/properties/:id
func (h *CustomerHandler) GetProperty(c *fiber.Ctx) error {
	out, err := h.properties.Get(c.UserContext(), PrincipalFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateProperty PUT /api/properties/:id
func (h *CustomerHandler) UpdateProperty(c *fiber.Ctx) error {
	var in dto.PropertyRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.properties.Update(c.UserContext(), PrincipalFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteProperty DELETE /api/properties/:id
func (h *CustomerHandler) DeleteProperty(c *fiber.Ctx) error {
	if err := h.properties.Delete(c.UserContext(), PrincipalFrom(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
