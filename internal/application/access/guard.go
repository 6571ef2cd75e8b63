// Package access centraliza la autorización sobre los documentos de facturación.
// Un único Guard decide si un principal puede ejecutar una acción sobre un recurso;
// los casos de uso lo consultan antes de leer o mutar.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// Action operación solicitada sobre un recurso.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceKind tipo de recurso protegido.
type ResourceKind string

const (
	ResourceCustomer ResourceKind = "customer"
	ResourceProperty ResourceKind = "property"
	ResourceEstimate ResourceKind = "estimate"
	ResourceInvoice  ResourceKind = "invoice"
	ResourcePayment  ResourceKind = "payment"
)

// ResourceRef identifica un recurso concreto. ID vacío = colección (list/create).
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

// Ref atajo para construir un ResourceRef.
func Ref(kind ResourceKind, id string) ResourceRef {
	return ResourceRef{Kind: kind, ID: id}
}

// Principal es quien ejecuta la operación (sale de los claims del JWT).
type Principal struct {
	UserID     string
	Role       string
	CustomerID string // solo para role customer
}

// Admin construye un principal administrador (bootstrap, tareas internas).
func Admin(userID string) Principal {
	return Principal{UserID: userID, Role: entity.RoleAdmin}
}

// Customer construye un principal de portal ligado a un cliente.
func Customer(userID, customerID string) Principal {
	return Principal{UserID: userID, Role: entity.RoleCustomer, CustomerID: customerID}
}

func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

func (p Principal) IsCustomer() bool {
	return p.Role == entity.RoleCustomer && p.CustomerID != ""
}

// OwnerResolver resuelve el cliente dueño de un recurso. Pago → factura → cliente,
// propiedad → cliente. Devuelve domain.ErrNotFound si el recurso no existe.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, kind ResourceKind, id string) (customerID string, err error)
}

// Guard es el punto único de autorización.
type Guard struct {
	owners OwnerResolver
	log    zerolog.Logger
}

// NewGuard construye el guard.
func NewGuard(owners OwnerResolver, log zerolog.Logger) *Guard {
	return &Guard{owners: owners, log: log}
}

// Authorize devuelve nil si el principal puede ejecutar action sobre ref.
// Cualquier denegación (incluido un recurso inexistente) es domain.ErrForbidden
// para no revelar si el recurso existe. Errores de almacenamiento se propagan envueltos.
func (g *Guard) Authorize(ctx context.Context, p Principal, action Action, ref ResourceRef) error {
	if !p.IsAdmin() && !p.IsCustomer() {
		return domain.ErrForbidden
	}

	if ref.ID == "" {
		switch {
		case p.IsAdmin():
			return nil
		case action == ActionList && ref.Kind != ResourceCustomer:
			// el llamador restringe el listado al cliente del principal
			return nil
		default:
			return g.deny(p, action, ref)
		}
	}

	owner, err := g.owners.OwnerOf(ctx, ref.Kind, ref.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("resolver dueño de %s %s: %w", ref.Kind, ref.ID, err)
	}

	if p.IsAdmin() {
		return nil
	}
	if (action == ActionView || action == ActionList) && owner == p.CustomerID {
		return nil
	}
	return g.deny(p, action, ref)
}

func (g *Guard) deny(p Principal, action Action, ref ResourceRef) error {
	g.log.Debug().
		Str("user_id", p.UserID).
		Str("role", p.Role).
		Str("action", string(action)).
		Str("resource", string(ref.Kind)).
		Str("resource_id", ref.ID).
		Msg("acceso denegado")
	return domain.ErrForbidden
}
