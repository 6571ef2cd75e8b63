package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
)

var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewBillingRepos construye los repos de facturación sobre q (pool o tx).
func NewBillingRepos(q Querier) billing.Repos {
	return billing.Repos{
		Customers:  NewCustomerRepository(q),
		Properties: NewPropertyRepository(q),
		Estimates:  NewEstimateRepository(q),
		Invoices:   NewInvoiceRepository(q),
		Payments:   NewPaymentRepository(q),
	}
}

// RunBilling inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(repos billing.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewBillingRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
