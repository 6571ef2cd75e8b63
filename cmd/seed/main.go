// seed carga datos de demostración (cliente, propiedad, presupuesto convertido y
// un pago parcial) a través de los casos de uso, para entornos de desarrollo.
//
// Uso: go run ./cmd/seed
// Requiere las migraciones aplicadas (go run ./cmd/migrate).
package main

import (
	"context"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/bootstrap"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if !cfg.App.IsDevelopment() {
		panic("seed solo se ejecuta con APP_ENV=development")
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	svc, err := bootstrap.NewBilling(pool, cfg, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar casos de uso")
	}
	if err := seed(ctx, svc, log); err != nil {
		log.Error().Err(err).Msg("seed fallido")
		os.Exit(1)
	}
}

func seed(ctx context.Context, svc *bootstrap.Billing, log *logger.Logger) error {
	admin := access.Admin("seed")

	customer, err := svc.Customers.Create(ctx, admin, dto.CustomerRequest{
		Name:  "Cliente Demo",
		Email: "demo@example.com",
		Phone: "+57 300 000 0000",
	})
	if err != nil {
		return err
	}
	property, err := svc.Properties.Create(ctx, admin, customer.ID, dto.PropertyRequest{
		Name:    "Apartamento Centro",
		Address: "Calle 10 # 5-20",
		Type:    entity.PropertyTypeAirBnB,
	})
	if err != nil {
		return err
	}

	tax := decimal.NewFromInt(10)
	est, err := svc.Estimates.Create(ctx, admin, dto.EstimateRequest{
		CustomerID: customer.ID,
		PropertyID: property.ID,
		TaxRate:    &tax,
		Notes:      "Limpieza profunda y mantenimiento",
		Items: []dto.LineItemRequest{
			{Description: "Limpieza", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
			{Description: "Materiales", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(30)},
		},
	})
	if err != nil {
		return err
	}
	for _, st := range []entity.EstimateStatus{entity.EstimateStatusSent, entity.EstimateStatusApproved} {
		if _, err := svc.Estimates.SetStatus(ctx, admin, est.ID, st); err != nil {
			return err
		}
	}
	inv, err := svc.Estimates.Convert(ctx, admin, est.ID)
	if err != nil {
		return err
	}
	pay, err := svc.Payments.Record(ctx, admin, inv.ID, dto.PaymentRequest{
		Amount: decimal.NewFromInt(100),
		Method: "transferencia",
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("customer", customer.ID).
		Str("estimate", est.Number).
		Str("invoice", inv.Number).
		Str("invoice_token", inv.PublicToken).
		Str("invoice_status", pay.InvoiceStatus).
		Msg("datos de demostración creados")
	return nil
}
