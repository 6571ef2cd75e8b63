package dto

import "github.com/shopspring/decimal"

// DateLayout formato de fechas en requests y responses (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ── Clientes ─────────────────────────────────────────────────────────────────

// CustomerRequest body para POST/PUT /api/customers.
type CustomerRequest struct {
	Name       string           `json:"name" validate:"required,max=200"`
	Email      string           `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string           `json:"phone,omitempty" validate:"omitempty,max=50"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email,omitempty"`
	Phone      string           `json:"phone,omitempty"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
	CreatedAt  string           `json:"created_at"`
}

// NewCustomerRequest cliente creado en línea al crear un presupuesto.
type NewCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// ── Propiedades ──────────────────────────────────────────────────────────────

// PropertyRequest body para POST /api/customers/:id/properties y PUT /api/properties/:id.
type PropertyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address,omitempty" validate:"omitempty,max=500"`
	Type    string `json:"type" validate:"required"`
	Active  *bool  `json:"active,omitempty"`
}

// PropertyResponse propiedad en respuestas.
type PropertyResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	Type       string `json:"type"`
	Active     bool   `json:"active"`
}

// ── Líneas ───────────────────────────────────────────────────────────────────

// LineItemRequest línea de presupuesto o factura. Las líneas sin descripción se descartan.
type LineItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// LineItemResponse línea en respuestas.
type LineItemResponse struct {
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// ── Presupuestos ─────────────────────────────────────────────────────────────

// EstimateRequest body para POST/PUT /api/estimates.
// Se indica CustomerID o NewCustomer (cliente creado en la misma transacción).
type EstimateRequest struct {
	CustomerID  string              `json:"customer_id,omitempty"`
	NewCustomer *NewCustomerRequest `json:"new_customer,omitempty"`
	PropertyID  string              `json:"property_id,omitempty"`
	IssueDate   string              `json:"issue_date,omitempty"`   // YYYY-MM-DD; por defecto hoy
	ExpiresDate string              `json:"expires_date,omitempty"` // por defecto emisión + validez
	TaxRate     *decimal.Decimal    `json:"tax_rate,omitempty"`     // porcentaje 0..100
	Notes       string              `json:"notes,omitempty"`
	Terms       string              `json:"terms,omitempty"`
	Items       []LineItemRequest   `json:"items"`
}

// EstimateStatusRequest body para POST /api/estimates/:id/status.
type EstimateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Sent Approved Rejected"`
}

// EstimateListQuery filtros de GET /api/estimates.
type EstimateListQuery struct {
	CustomerID string `query:"customer_id"`
	Status     string `query:"status" validate:"omitempty,oneof=Draft Sent Approved Rejected Expired"`
	PageRequest
}

// EstimateResponse presupuesto con líneas (las líneas se omiten en listados).
type EstimateResponse struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	PropertyID         *string            `json:"property_id,omitempty"`
	Number             string             `json:"number"`
	PublicToken        string             `json:"public_token"`
	IssueDate          string             `json:"issue_date"`
	ExpiresDate        string             `json:"expires_date"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	TaxRate            decimal.Decimal    `json:"tax_rate"`
	TaxAmount          decimal.Decimal    `json:"tax_amount"`
	Total              decimal.Decimal    `json:"total"`
	Notes              string             `json:"notes,omitempty"`
	Terms              string             `json:"terms,omitempty"`
	Status             string             `json:"status"`
	ConvertedInvoiceID *string            `json:"converted_invoice_id,omitempty"`
	Items              []LineItemResponse `json:"items,omitempty"`
}

// ActivityResponse entrada del historial de un presupuesto.
type ActivityResponse struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// ── Facturas ─────────────────────────────────────────────────────────────────

// InvoiceRequest body para POST/PUT /api/invoices.
type InvoiceRequest struct {
	CustomerID string            `json:"customer_id"`
	PropertyID string            `json:"property_id,omitempty"`
	IssueDate  string            `json:"issue_date,omitempty"`
	DueDate    string            `json:"due_date,omitempty"` // por defecto emisión + plazo de pago
	TaxRate    *decimal.Decimal  `json:"tax_rate,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Items      []LineItemRequest `json:"items"`
}

// InvoiceListQuery filtros de GET /api/invoices.
type InvoiceListQuery struct {
	CustomerID string `query:"customer_id"`
	Status     string `query:"status" validate:"omitempty,oneof=Unpaid Partial Paid"`
	PageRequest
}

// InvoiceResponse factura con líneas, pagos y saldo derivado.
type InvoiceResponse struct {
	ID          string             `json:"id"`
	CustomerID  string             `json:"customer_id"`
	PropertyID  *string            `json:"property_id,omitempty"`
	EstimateID  *string            `json:"estimate_id,omitempty"`
	Number      string             `json:"number"`
	PublicToken string             `json:"public_token"`
	IssueDate   string             `json:"issue_date"`
	DueDate     string             `json:"due_date"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	TaxRate     decimal.Decimal    `json:"tax_rate"`
	TaxAmount   decimal.Decimal    `json:"tax_amount"`
	Total       decimal.Decimal    `json:"total"`
	AmountPaid  decimal.Decimal    `json:"amount_paid"`
	BalanceDue  decimal.Decimal    `json:"balance_due"`
	Notes       string             `json:"notes,omitempty"`
	Status      string             `json:"status"`
	Items       []LineItemResponse `json:"items,omitempty"`
	Payments    []PaymentResponse  `json:"payments,omitempty"`
}

// InvoiceStatusResponse respuesta de GET /api/invoices/:id/status.
type InvoiceStatusResponse struct {
	InvoiceID  string          `json:"invoice_id"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// BalanceResponse respuesta de GET /api/invoices/:id/balance.
// Un saldo negativo es crédito a favor del cliente.
type BalanceResponse struct {
	InvoiceID  string          `json:"invoice_id"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// ── Pagos ────────────────────────────────────────────────────────────────────

// PaymentRequest body para POST /api/invoices/:id/payments y PUT /api/payments/:id.
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"required,max=50"`
	PaymentDate string          `json:"payment_date,omitempty"` // por defecto hoy
	Notes       string          `json:"notes,omitempty"`
}

// PaymentResponse pago en respuestas. InvoiceStatus/BalanceDue reflejan la factura
// después de registrar o modificar el pago.
type PaymentResponse struct {
	ID            string           `json:"id"`
	InvoiceID     string           `json:"invoice_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Method        string           `json:"method"`
	PaymentDate   string           `json:"payment_date"`
	Notes         string           `json:"notes,omitempty"`
	InvoiceStatus string           `json:"invoice_status,omitempty"`
	BalanceDue    *decimal.Decimal `json:"balance_due,omitempty"`
}

// ── Portal y enlaces públicos (nunca exponen el UUID interno) ────────────────

// PublicPaymentResponse pago visible para el cliente.
type PublicPaymentResponse struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaymentDate string          `json:"payment_date"`
}

// PublicInvoiceResponse factura vista por el cliente.
type PublicInvoiceResponse struct {
	Number              string                  `json:"number"`
	Token               string                  `json:"token"`
	CustomerName        string                  `json:"customer_name"`
	PropertyName        string                  `json:"property_name,omitempty"`
	IssueDate           string                  `json:"issue_date"`
	DueDate             string                  `json:"due_date"`
	Subtotal            decimal.Decimal         `json:"subtotal"`
	TaxRate             decimal.Decimal         `json:"tax_rate"`
	TaxAmount           decimal.Decimal         `json:"tax_amount"`
	Total               decimal.Decimal         `json:"total"`
	AmountPaid          decimal.Decimal         `json:"amount_paid"`
	BalanceDue          decimal.Decimal         `json:"balance_due"`
	Status              string                  `json:"status"`
	Notes               string                  `json:"notes,omitempty"`
	Items               []LineItemResponse      `json:"items,omitempty"`
	Payments            []PublicPaymentResponse `json:"payments,omitempty"`
	BusinessName        string                  `json:"business_name,omitempty"`
	PaymentInstructions string                  `json:"payment_instructions,omitempty"`
}

// PublicEstimateResponse presupuesto visto por el cliente.
type PublicEstimateResponse struct {
	Number       string             `json:"number"`
	Token        string             `json:"token"`
	CustomerName string             `json:"customer_name"`
	PropertyName string             `json:"property_name,omitempty"`
	IssueDate    string             `json:"issue_date"`
	ExpiresDate  string             `json:"expires_date"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	TaxRate      decimal.Decimal    `json:"tax_rate"`
	TaxAmount    decimal.Decimal    `json:"tax_amount"`
	Total        decimal.Decimal    `json:"total"`
	Status       string             `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	Terms        string             `json:"terms,omitempty"`
	Items        []LineItemResponse `json:"items,omitempty"`
	BusinessName string             `json:"business_name,omitempty"`
}
