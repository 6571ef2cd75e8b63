package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Resolver en memoria
// ──────────────────────────────────────────────────────────────────────────────

type mapResolver struct {
	owners map[access.ResourceRef]string
	err    error
}

func (m *mapResolver) OwnerOf(_ context.Context, kind access.ResourceKind, id string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	owner, ok := m.owners[access.Ref(kind, id)]
	if !ok {
		return "", domain.ErrNotFound
	}
	return owner, nil
}

const (
	custA = "cust-a"
	custB = "cust-b"
)

func newGuard() *access.Guard {
	return access.NewGuard(&mapResolver{owners: map[access.ResourceRef]string{
		access.Ref(access.ResourceCustomer, custA):  custA,
		access.Ref(access.ResourceInvoice, "inv-a"): custA,
		access.Ref(access.ResourceInvoice, "inv-b"): custB,
		access.Ref(access.ResourcePayment, "pay-a"): custA,
		access.Ref(access.ResourceEstimate, "est-b"): custB,
	}}, zerolog.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Casos
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthorize_AdminPuedeTodoSobreRecursosExistentes(t *testing.T) {
	g := newGuard()
	admin := access.Admin("u-1")
	ctx := context.Background()

	for _, act := range []access.Action{access.ActionView, access.ActionUpdate, access.ActionDelete} {
		assert.NoError(t, g.Authorize(ctx, admin, act, access.Ref(access.ResourceInvoice, "inv-b")))
	}
	assert.NoError(t, g.Authorize(ctx, admin, access.ActionCreate, access.Ref(access.ResourceEstimate, "")))
	assert.NoError(t, g.Authorize(ctx, admin, access.ActionList, access.Ref(access.ResourceInvoice, "")))
}

func TestAuthorize_AdminRecursoInexistente_Forbidden(t *testing.T) {
	err := newGuard().Authorize(context.Background(), access.Admin("u-1"), access.ActionView,
		access.Ref(access.ResourceInvoice, "no-existe"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthorize_ClienteSoloLeeLoSuyo(t *testing.T) {
	g := newGuard()
	ctx := context.Background()
	p := access.Customer("u-2", custA)

	assert.NoError(t, g.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceInvoice, "inv-a")))
	assert.NoError(t, g.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourcePayment, "pay-a")))
	assert.NoError(t, g.Authorize(ctx, p, access.ActionList, access.Ref(access.ResourceInvoice, "")))

	assert.ErrorIs(t, g.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceInvoice, "inv-b")), domain.ErrForbidden,
		"factura de otro cliente")
	assert.ErrorIs(t, g.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceEstimate, "est-b")), domain.ErrForbidden)
	assert.ErrorIs(t, g.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceInvoice, "inv-a")), domain.ErrForbidden,
		"el portal es de solo lectura")
	assert.ErrorIs(t, g.Authorize(ctx, p, access.ActionCreate, access.Ref(access.ResourceEstimate, "")), domain.ErrForbidden)
	assert.ErrorIs(t, g.Authorize(ctx, p, access.ActionList, access.Ref(access.ResourceCustomer, "")), domain.ErrForbidden,
		"el listado de clientes es solo para administradores")
}

func TestAuthorize_PrincipalAnonimo_Forbidden(t *testing.T) {
	g := newGuard()
	ctx := context.Background()

	assert.ErrorIs(t, g.Authorize(ctx, access.Principal{}, access.ActionList, access.Ref(access.ResourceInvoice, "")), domain.ErrForbidden)
	// rol customer sin cliente ligado
	assert.ErrorIs(t, g.Authorize(ctx, access.Principal{Role: "customer"}, access.ActionView,
		access.Ref(access.ResourceInvoice, "inv-a")), domain.ErrForbidden)
}

func TestAuthorize_ErrorDeAlmacenamientoSePropaga(t *testing.T) {
	boom := errors.New("conexión perdida")
	g := access.NewGuard(&mapResolver{err: boom}, zerolog.Nop())

	err := g.Authorize(context.Background(), access.Admin("u-1"), access.ActionView, access.Ref(access.ResourceInvoice, "inv-a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
}
