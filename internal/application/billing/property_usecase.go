package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// PropertyUseCase casos de uso para propiedades de un cliente.
type PropertyUseCase struct {
	d Deps
}

// NewPropertyUseCase construye el caso de uso.
func NewPropertyUseCase(d Deps) *PropertyUseCase {
	return &PropertyUseCase{d: d.withDefaults()}
}

func validateProperty(in dto.PropertyRequest) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "el nombre es obligatorio")
	}
	if !entity.IsValidPropertyType(in.Type) {
		return domain.Invalid("type", "tipo inválido %q; válidos: %s", in.Type, strings.Join(entity.PropertyTypes, ", "))
	}
	return nil
}

// Create crea una propiedad para el cliente.
func (uc *PropertyUseCase) Create(ctx context.Context, p access.Principal, customerID string, in dto.PropertyRequest) (*dto.PropertyResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceCustomer, customerID)); err != nil {
		return nil, err
	}
	if err := validateProperty(in); err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := uc.d.Now()
	prop := &entity.Property{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Name:       strings.TrimSpace(in.Name),
		Address:    strings.TrimSpace(in.Address),
		Type:       in.Type,
		Active:     active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.d.Repos.Properties.Create(ctx, prop); err != nil {
		return nil, err
	}
	return toPropertyResponse(prop), nil
}

// Get devuelve una propiedad.
func (uc *PropertyUseCase) Get(ctx context.Context, p access.Principal, id string) (*dto.PropertyResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceProperty, id)); err != nil {
		return nil, err
	}
	prop, err := uc.d.Repos.Properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPropertyResponse(prop), nil
}

// ListByCustomer lista las propiedades de un cliente.
func (uc *PropertyUseCase) ListByCustomer(ctx context.Context, p access.Principal, customerID string) ([]*dto.PropertyResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionList, access.Ref(access.ResourceCustomer, customerID)); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Properties.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PropertyResponse, 0, len(list))
	for _, prop := range list {
		out = append(out, toPropertyResponse(prop))
	}
	return out, nil
}

// Update actualiza una propiedad.
func (uc *PropertyUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.PropertyRequest) (*dto.PropertyResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceProperty, id)); err != nil {
		return nil, err
	}
	if err := validateProperty(in); err != nil {
		return nil, err
	}
	prop, err := uc.d.Repos.Properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prop.Name = strings.TrimSpace(in.Name)
	prop.Address = strings.TrimSpace(in.Address)
	prop.Type = in.Type
	if in.Active != nil {
		prop.Active = *in.Active
	}
	prop.UpdatedAt = uc.d.Now()
	if err := uc.d.Repos.Properties.Update(ctx, prop); err != nil {
		return nil, err
	}
	return toPropertyResponse(prop), nil
}

// Delete borra la propiedad si ninguna factura la referencia.
func (uc *PropertyUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionDelete, access.Ref(access.ResourceProperty, id)); err != nil {
		return err
	}
	return uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		n, err := r.Properties.CountInvoices(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InvalidState("la propiedad está en %d factura(s) y no se puede borrar", n)
		}
		if err := r.Properties.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return nil
	})
}
