package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// ResolveInvoiceStatus deriva el estado a partir del total y lo pagado.
// El orden importa: una factura con total 0 se considera pagada.
func ResolveInvoiceStatus(total, paid decimal.Decimal) entity.InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return entity.InvoiceStatusPaid
	case paid.IsPositive():
		return entity.InvoiceStatusPartial
	default:
		return entity.InvoiceStatusUnpaid
	}
}

// transiciones manuales permitidas (Expired solo ocurre por fecha).
var estimateTransitions = map[entity.EstimateStatus][]entity.EstimateStatus{
	entity.EstimateStatusDraft: {entity.EstimateStatusSent, entity.EstimateStatusExpired},
	entity.EstimateStatusSent:  {entity.EstimateStatusApproved, entity.EstimateStatusRejected, entity.EstimateStatusExpired},
}

// CanTransition indica si el presupuesto puede pasar de from a to.
func CanTransition(from, to entity.EstimateStatus) bool {
	for _, s := range estimateTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsEditable: solo Draft y Sent admiten edición o borrado; el resto es terminal.
func IsEditable(s entity.EstimateStatus) bool {
	return s == entity.EstimateStatusDraft || s == entity.EstimateStatusSent
}

// IsOverdue compara fechas de calendario: vence cuando la fecha de now es posterior
// a la fecha de expiración.
func IsOverdue(expires, now time.Time) bool {
	return calendarDate(now).After(calendarDate(expires))
}

// EffectiveEstimateStatus aplica la expiración perezosa sobre el estado guardado.
func EffectiveEstimateStatus(e *entity.Estimate, now time.Time) entity.EstimateStatus {
	if IsEditable(e.Status) && IsOverdue(e.ExpiresDate, now) {
		return entity.EstimateStatusExpired
	}
	return e.Status
}

// CanConvert devuelve ErrInvalidState si el presupuesto no puede convertirse.
func CanConvert(e *entity.Estimate, now time.Time) error {
	if e.ConvertedInvoiceID != nil {
		return domain.InvalidState("el presupuesto %s ya fue convertido en factura", e.Number)
	}
	if st := EffectiveEstimateStatus(e, now); st != entity.EstimateStatusApproved {
		return domain.InvalidState("el presupuesto %s está en estado %s; solo se convierten presupuestos aprobados", e.Number, st)
	}
	return nil
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
