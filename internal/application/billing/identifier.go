package billing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Facturacion-api/internal/domain"
)

// DocumentKind tipo de documento numerado.
type DocumentKind string

const (
	KindInvoice  DocumentKind = "invoice"
	KindEstimate DocumentKind = "estimate"
)

// DefaultMaxAttempts intentos de asignación antes de rendirse.
const DefaultMaxAttempts = 10

// tokenBytes bytes aleatorios del token público (64 caracteres hex).
const tokenBytes = 32

// Identifiers número legible + token opaco asignados a un documento.
type Identifiers struct {
	Number      string
	PublicToken string
}

// NumberSequence fuente del mayor contador usado (EstimateRepository / InvoiceRepository).
type NumberSequence interface {
	MaxNumber(ctx context.Context, prefix string) (int64, error)
}

// IdentifierGenerator asigna números PREFIJO-000001 y tokens públicos.
// No usa "max + 1" a secas: inserta y, si la base rechaza el número por duplicado
// (domain.ErrConflict), reintenta con el siguiente candidato.
type IdentifierGenerator struct {
	invoicePrefix  string
	estimatePrefix string
	width          int
	maxAttempts    int
	metrics        Metrics
	log            zerolog.Logger
}

// NewIdentifierGenerator construye el generador a partir de los Settings.
func NewIdentifierGenerator(s Settings, maxAttempts int, metrics Metrics, log zerolog.Logger) *IdentifierGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	width := s.NumberWidth
	if width <= 0 {
		width = DefaultSettings().NumberWidth
	}
	return &IdentifierGenerator{
		invoicePrefix:  orDefault(s.InvoicePrefix, "INV"),
		estimatePrefix: orDefault(s.EstimatePrefix, "EST"),
		width:          width,
		maxAttempts:    maxAttempts,
		metrics:        metrics,
		log:            log,
	}
}

// Prefix devuelve el prefijo configurado para kind.
func (g *IdentifierGenerator) Prefix(kind DocumentKind) string {
	if kind == KindEstimate {
		return g.estimatePrefix
	}
	return g.invoicePrefix
}

// Allocate propone identificadores y llama a insert hasta que la inserción se acepta.
// insert debe devolver domain.ErrConflict ante una violación de unicidad; cualquier
// otro error corta el ciclo y se devuelve tal cual.
func (g *IdentifierGenerator) Allocate(
	ctx context.Context,
	kind DocumentKind,
	seq NumberSequence,
	insert func(ids Identifiers) error,
) (Identifiers, error) {
	prefix := g.Prefix(kind)

	latest, err := seq.MaxNumber(ctx, prefix)
	if err != nil {
		return Identifiers{}, fmt.Errorf("leer último número %s: %w", prefix, err)
	}
	candidate := latest + 1

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		token, err := NewPublicToken()
		if err != nil {
			return Identifiers{}, err
		}
		ids := Identifiers{
			Number:      FormatDocumentNumber(prefix, candidate, g.width),
			PublicToken: token,
		}

		err = insert(ids)
		if err == nil {
			return ids, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return Identifiers{}, err
		}

		g.metrics.IdentifierRetry(kind)
		g.log.Debug().
			Str("kind", string(kind)).
			Str("number", ids.Number).
			Int("attempt", attempt).
			Msg("número ocupado, reintentando")

		if err := ctx.Err(); err != nil {
			return Identifiers{}, err
		}
		latest, err = seq.MaxNumber(ctx, prefix)
		if err != nil {
			return Identifiers{}, fmt.Errorf("leer último número %s: %w", prefix, err)
		}
		candidate = max(latest+1, candidate+1)
	}

	return Identifiers{}, fmt.Errorf("%w: no se pudo asignar un número %s tras %d intentos",
		domain.ErrConflict, prefix, g.maxAttempts)
}

// FormatDocumentNumber formatea PREFIJO-000042 con relleno de ceros hasta width.
func FormatDocumentNumber(prefix string, n int64, width int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}

// NewPublicToken genera un token opaco no adivinable para enlaces compartidos.
func NewPublicToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar token público: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
