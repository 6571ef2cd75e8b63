package http

import (
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
)

func errorStatus(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, err) })
	resp, e := app.Test(httptest.NewRequest(nethttp.MethodGet, "/", nil), -1)
	require.NoError(t, e)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWriteError_Mapeo(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.Invalid("items", "al menos una línea"), fiber.StatusBadRequest, "VALIDATION"},
		{"entrada inválida envuelta", fmt.Errorf("x: %w", domain.ErrInvalidInput), fiber.StatusBadRequest, "VALIDATION"},
		{"estado", domain.InvalidState("presupuesto en Draft"), fiber.StatusConflict, "INVALID_STATE"},
		{"conflicto", fmt.Errorf("estimate number EST-0001: %w", domain.ErrConflict), fiber.StatusConflict, "CONFLICT"},
		{"email", domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
		{"no autorizado", domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"prohibido se oculta", domain.ErrForbidden, fiber.StatusNotFound, "NOT_FOUND"},
		{"no encontrado", domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"interno", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			status, body := errorStatus(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestWriteError_InternoNoFiltraDetalle(t *testing.T) {
	_, body := errorStatus(t, errors.New("pq: password authentication failed"))
	assert.NotContains(t, body.Message, "password")
}

func TestWriteError_ForbiddenYNotFoundIguales(t *testing.T) {
	s1, b1 := errorStatus(t, domain.ErrForbidden)
	s2, b2 := errorStatus(t, domain.ErrNotFound)
	assert.Equal(t, s2, s1)
	assert.Equal(t, b2, b1)
}

func TestParseBody_NombreJSONEnError(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in dto.EstimateStatusRequest
		if err := parseBody(c, &in); err != nil {
			return writeError(c, err)
		}
		return c.JSON(in)
	})

	req := httptest.NewRequest(nethttp.MethodPost, "/", strings.NewReader(`{"status":"Expired"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body.Message, "status:"), body.Message)
}

func TestParseQuery_PaginacionPorDefecto(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		var q dto.InvoiceListQuery
		if err := parseQuery(c, &q); err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"limit": q.Limit, "offset": q.Offset, "status": q.Status})
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/?status=Paid", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 20, body["limit"])
	assert.Equal(t, "Paid", body["status"])

	resp2, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/?limit=500", nil), -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp2.StatusCode)
}
