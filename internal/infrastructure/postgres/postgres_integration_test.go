package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Facturacion-api/pkg/config"
)

// Requiere una base vacía: FACTURACION_TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("FACTURACION_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FACTURACION_TEST_DATABASE_URL no definido")
	}

	db, err := postgres.OpenSQL(dsn)
	require.NoError(t, err)
	require.NoError(t, postgres.RunMigrations(db, postgres.MigrateReset))
	require.NoError(t, postgres.RunMigrations(db, postgres.MigrateUp))
	require.NoError(t, db.Close())

	pool, err := postgres.NewPool(context.Background(), config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedCustomer(t *testing.T, ctx context.Context, r billing.Repos) *entity.Customer {
	t.Helper()
	now := time.Now().UTC()
	c := &entity.Customer{ID: uuid.New().String(), Name: "Ana", Email: "ana@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, r.Customers.Create(ctx, c))
	return c
}

func newEstimate(customerID, number string) *entity.Estimate {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return &entity.Estimate{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		Number:      number,
		PublicToken: uuid.New().String(),
		IssueDate:   today,
		ExpiresDate: today.AddDate(0, 0, 30),
		Subtotal:    decimal.RequireFromString("130.00"),
		TaxRate:     decimal.RequireFromString("10"),
		TaxAmount:   decimal.RequireFromString("13.00"),
		Total:       decimal.RequireFromString("143.00"),
		Status:      entity.EstimateStatusDraft,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestEstimateCreate_ColisionEnSavepoint_NoAbortaTransaccion(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)

	err := runner.RunBilling(ctx, func(r billing.Repos) error {
		c := seedCustomer(t, ctx, r)
		require.NoError(t, r.Estimates.Create(ctx, newEstimate(c.ID, "EST-000001")))

		err := r.Estimates.Create(ctx, newEstimate(c.ID, "EST-000001"))
		require.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)

		// la transacción sigue usable tras la colisión
		require.NoError(t, r.Estimates.Create(ctx, newEstimate(c.ID, "EST-000002")))
		n, err := r.Estimates.MaxNumber(ctx, "EST")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return nil
	})
	require.NoError(t, err)
}

func TestSetConvertedInvoice_SegundaVez_InvalidState(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repos := postgres.NewBillingRepos(pool)

	c := seedCustomer(t, ctx, repos)
	e := newEstimate(c.ID, "EST-000001")
	require.NoError(t, repos.Estimates.Create(ctx, e))

	require.NoError(t, repos.Estimates.SetConvertedInvoice(ctx, e.ID, uuid.New().String()))
	err := repos.Estimates.SetConvertedInvoice(ctx, e.ID, uuid.New().String())
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "got %v", err)

	err = repos.Estimates.SetConvertedInvoice(ctx, uuid.New().String(), uuid.New().String())
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestRunBilling_ErrorHaceRollback(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	boom := errors.New("boom")

	var customerID string
	err := runner.RunBilling(ctx, func(r billing.Repos) error {
		customerID = seedCustomer(t, ctx, r).ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = postgres.NewCustomerRepository(pool).GetByID(ctx, customerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentsSumYOwnerResolver(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repos := postgres.NewBillingRepos(pool)
	c := seedCustomer(t, ctx, repos)
	now := time.Now().UTC()

	inv := &entity.Invoice{
		ID: uuid.New().String(), CustomerID: c.ID, Number: "INV-000001", PublicToken: uuid.New().String(),
		IssueDate: now, DueDate: now.AddDate(0, 0, 30),
		Subtotal: decimal.RequireFromString("130.00"), TaxRate: decimal.RequireFromString("10"),
		TaxAmount: decimal.RequireFromString("13.00"), Total: decimal.RequireFromString("143.00"),
		Status: entity.InvoiceStatusUnpaid, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.Invoices.Create(ctx, inv))

	sum, err := repos.Payments.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	p := &entity.Payment{
		ID: uuid.New().String(), InvoiceID: inv.ID, Amount: decimal.RequireFromString("100.00"),
		Method: entity.PaymentMethodCash, PaymentDate: now, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.Payments.Create(ctx, p))
	sum, err = repos.Payments.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", sum.String())

	owners := postgres.NewOwnerResolver(pool)
	owner, err := owners.OwnerOf(ctx, access.ResourcePayment, p.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, owner)

	_, err = owners.OwnerOf(ctx, access.ResourceInvoice, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// el cliente con facturas no se puede borrar
	err = repos.Customers.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
