package http_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	apphttp "github.com/jhoicas/Facturacion-api/internal/interfaces/http"
)

// Los middlewares cortan antes de llegar a los handlers, así que los casos de uso
// pueden ser nil en estas pruebas.
func buildRouterApp() *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{JWTSecret: testJWTSecret})
	return app
}

func TestRouter_RutasAdmin_RechazanSinToken(t *testing.T) {
	app := buildRouterApp()
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/customers"},
		{http.MethodPost, "/api/estimates"},
		{http.MethodPost, "/api/estimates/x/convert"},
		{http.MethodGet, "/api/invoices/x/balance"},
		{http.MethodDelete, "/api/payments/x"},
		{http.MethodPost, "/api/auth/users"},
		{http.MethodGet, "/api/portal/invoices"},
	}
	for _, p := range paths {
		resp := doRequest(t, app, p.method, p.path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", p.method, p.path)
		resp.Body.Close()
	}
}

func TestRouter_CustomerNoAccedeRutasAdmin(t *testing.T) {
	app := buildRouterApp()
	for _, path := range []string{"/api/customers", "/api/estimates", "/api/invoices"} {
		resp := doRequest(t, app, http.MethodGet, path, customerToken(t))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestRouter_AdminNoAccedePortal(t *testing.T) {
	app := buildRouterApp()
	resp := doRequest(t, app, http.MethodGet, "/api/portal/estimates", adminToken(t))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_RutaInexistente_404(t *testing.T) {
	app := buildRouterApp()
	resp := doRequest(t, app, http.MethodGet, "/public/otros/abc", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
