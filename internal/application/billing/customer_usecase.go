package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	domainbilling "github.com/jhoicas/Facturacion-api/internal/domain/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// CustomerUseCase casos de uso para clientes.
type CustomerUseCase struct {
	d Deps
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(d Deps) *CustomerUseCase {
	return &CustomerUseCase{d: d.withDefaults()}
}

func validateCustomer(in dto.CustomerRequest) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "el nombre es obligatorio")
	}
	if in.HourlyRate != nil && in.HourlyRate.IsNegative() {
		return domain.Invalid("hourly_rate", "no puede ser negativa")
	}
	if in.HourlyRate != nil {
		return domainbilling.ValidateScale("hourly_rate", *in.HourlyRate, domainbilling.CurrencyPlaces)
	}
	return nil
}

// Create crea un nuevo cliente.
func (uc *CustomerUseCase) Create(ctx context.Context, p access.Principal, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionCreate, access.Ref(access.ResourceCustomer, "")); err != nil {
		return nil, err
	}
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	now := uc.d.Now()
	customer := &entity.Customer{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		HourlyRate: in.HourlyRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.d.Repos.Customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Get devuelve un cliente.
func (uc *CustomerUseCase) Get(ctx context.Context, p access.Principal, id string) (*dto.CustomerResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionView, access.Ref(access.ResourceCustomer, id)); err != nil {
		return nil, err
	}
	c, err := uc.d.Repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// List lista clientes.
func (uc *CustomerUseCase) List(ctx context.Context, p access.Principal, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionList, access.Ref(access.ResourceCustomer, "")); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Customers.List(ctx, normalizePage(page))
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// Update actualiza los datos del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionUpdate, access.Ref(access.ResourceCustomer, id)); err != nil {
		return nil, err
	}
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	c, err := uc.d.Repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.HourlyRate = in.HourlyRate
	c.UpdatedAt = uc.d.Now()
	if err := uc.d.Repos.Customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Delete borra el cliente si no tiene facturas; si las tiene devuelve ErrInvalidState.
func (uc *CustomerUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	if err := uc.d.Guard.Authorize(ctx, p, access.ActionDelete, access.Ref(access.ResourceCustomer, id)); err != nil {
		return err
	}
	return uc.d.Tx.RunBilling(ctx, func(r Repos) error {
		n, err := r.Customers.CountInvoices(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InvalidState("el cliente tiene %d factura(s) y no se puede borrar", n)
		}
		return r.Customers.Delete(ctx, id)
	})
}
