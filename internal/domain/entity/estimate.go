package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstimateStatus estado del ciclo de vida de un presupuesto.
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "Draft"
	EstimateStatusSent     EstimateStatus = "Sent"
	EstimateStatusApproved EstimateStatus = "Approved"
	EstimateStatusRejected EstimateStatus = "Rejected"
	EstimateStatusExpired  EstimateStatus = "Expired"
)

// Acciones del historial de un presupuesto.
const (
	ActivityCreated   = "created"
	ActivityUpdated   = "updated"
	ActivitySent      = "sent"
	ActivityApproved  = "approved"
	ActivityRejected  = "rejected"
	ActivityExpired   = "expired"
	ActivityConverted = "converted"
)

// Estimate representa la cabecera de un presupuesto (cotización).
type Estimate struct {
	ID                 string
	CustomerID         string
	PropertyID         *string
	Number             string // EST-000001
	PublicToken        string // identificador opaco para enlaces compartidos
	IssueDate          time.Time
	ExpiresDate        time.Time
	Subtotal           decimal.Decimal
	TaxRate            decimal.Decimal // porcentaje 0..100
	TaxAmount          decimal.Decimal
	Total              decimal.Decimal
	Notes              string
	Terms              string
	Status             EstimateStatus
	ConvertedInvoiceID *string // una vez asignado no se borra ni se cambia
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ActivityEntry es una entrada del historial (solo inserción) de un presupuesto.
type ActivityEntry struct {
	ID          string
	EstimateID  string
	Action      string
	Description string
	CreatedAt   time.Time
}
