package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain"
)

// numberTable simula la restricción UNIQUE(number) de la tabla.
type numberTable struct {
	mu      sync.Mutex
	numbers map[string]bool
	tokens  map[string]bool
}

func newNumberTable() *numberTable {
	return &numberTable{numbers: map[string]bool{}, tokens: map[string]bool{}}
}

func (t *numberTable) MaxNumber(_ context.Context, prefix string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	numbers := make([]string, 0, len(t.numbers))
	for n := range t.numbers {
		numbers = append(numbers, n)
	}
	return maxNumber(prefix, numbers), nil
}

func (t *numberTable) insert(ids billing.Identifiers) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.numbers[ids.Number] || t.tokens[ids.PublicToken] {
		return domain.ErrConflict
	}
	t.numbers[ids.Number] = true
	t.tokens[ids.PublicToken] = true
	return nil
}

// staleSequence siempre devuelve el mismo máximo, como una lectura anterior a
// inserciones concurrentes.
type staleSequence struct{ max int64 }

func (s staleSequence) MaxNumber(context.Context, string) (int64, error) { return s.max, nil }

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INV-000001", billing.FormatDocumentNumber("INV", 1, 6))
	assert.Equal(t, "EST-000042", billing.FormatDocumentNumber("EST", 42, 6))
	assert.Equal(t, "INV-1234567", billing.FormatDocumentNumber("INV", 1234567, 6), "no se trunca al superar el ancho")
}

func TestMaxNumber_IgnoraOtrosPrefijosYFormatos(t *testing.T) {
	numbers := []string{"INV-000042", "INV-000007", "EST-000100", "INV-", "INV-abc", "INV000099", ""}
	assert.Equal(t, int64(42), maxNumber("INV", numbers))
	assert.Zero(t, maxNumber("INV", nil))
}

func TestNewPublicToken_UnicoYHex(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := billing.NewPublicToken()
		require.NoError(t, err)
		assert.Len(t, tok, 64)
		assert.Regexp(t, "^[0-9a-f]{64}$", tok)
		assert.False(t, seen[tok], "token repetido")
		seen[tok] = true
	}
}

func TestAllocate_ReintentaTrasColision(t *testing.T) {
	gen := billing.NewIdentifierGenerator(billing.DefaultSettings(), 0, nil, zerolog.Nop())
	table := newNumberTable()
	table.numbers["INV-000001"] = true
	table.numbers["INV-000002"] = true

	// la secuencia devuelve un máximo viejo: el primer candidato choca
	ids, err := gen.Allocate(context.Background(), billing.KindInvoice, staleSequence{max: 0}, table.insert)
	require.NoError(t, err)
	assert.Equal(t, "INV-000003", ids.Number)
}

func TestAllocate_AgotaIntentos_ErrConflict(t *testing.T) {
	gen := billing.NewIdentifierGenerator(billing.DefaultSettings(), 3, nil, zerolog.Nop())
	calls := 0
	_, err := gen.Allocate(context.Background(), billing.KindEstimate, staleSequence{}, func(billing.Identifiers) error {
		calls++
		return domain.ErrConflict
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, calls)
}

func TestAllocate_ErrorNoConflicto_NoReintenta(t *testing.T) {
	gen := billing.NewIdentifierGenerator(billing.DefaultSettings(), 0, nil, zerolog.Nop())
	boom := errors.New("disco lleno")
	calls := 0
	_, err := gen.Allocate(context.Background(), billing.KindEstimate, staleSequence{}, func(billing.Identifiers) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

// 50 asignaciones concurrentes producen 50 números distintos y consecutivos.
func TestAllocate_50Concurrentes_NumerosDistintos(t *testing.T) {
	const workers = 50
	// cada reintento usa un candidato mayor que el anterior y cada choque implica que
	// otro worker ganó ese número, así que workers intentos siempre alcanzan.
	gen := billing.NewIdentifierGenerator(billing.DefaultSettings(), workers, nil, zerolog.Nop())
	table := newNumberTable()

	results := make([]string, workers)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			ids, err := gen.Allocate(ctx, billing.KindEstimate, table, table.insert)
			if err != nil {
				return err
			}
			results[i] = ids.Number
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := map[string]bool{}
	for _, n := range results {
		assert.False(t, seen[n], "número duplicado %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[billing.FormatDocumentNumber("EST", i, 6)], "falta el número %d", i)
	}
}
