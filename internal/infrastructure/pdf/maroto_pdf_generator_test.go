package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	appbilling "github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/pdf"
)

func sampleItems() []entity.LineItem {
	return []entity.LineItem{
		{Position: 1, Description: "Labor", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50), Total: decimal.NewFromInt(100)},
		{Position: 2, Description: "Paint", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(30), Total: decimal.NewFromInt(30)},
	}
}

func TestGenerateInvoicePDF(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(pdf.Options{
		Language:      language.Spanish,
		PublicBaseURL: "https://facturas.example.com/",
	})
	issue := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	doc := appbilling.InvoiceDocument{
		Invoice: &entity.Invoice{
			Number: "INV-000001", PublicToken: "abc123",
			IssueDate: issue, DueDate: issue.AddDate(0, 0, 30),
			Subtotal: decimal.RequireFromString("130"), TaxRate: decimal.RequireFromString("10"),
			TaxAmount: decimal.RequireFromString("13"), Total: decimal.RequireFromString("143"),
			Notes: "Gracias por su confianza", Status: entity.InvoiceStatusPartial,
		},
		Customer: &entity.Customer{Name: "Ana", Email: "ana@example.com"},
		Property: &entity.Property{Name: "Casa playa", Address: "Calle 1"},
		Items:    sampleItems(),
		Payments: []entity.Payment{
			{Amount: decimal.NewFromInt(100), Method: entity.PaymentMethodCash, PaymentDate: issue},
		},
		AmountPaid:          decimal.NewFromInt(100),
		BalanceDue:          decimal.NewFromInt(43),
		BusinessName:        "Limpiezas Ana",
		PaymentInstructions: "Transferencia a la cuenta 123",
	}

	out, err := gen.GenerateInvoicePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "no es un PDF")
}

func TestGenerateEstimatePDF_SinPropiedadNiURL(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(pdf.Options{})
	issue := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	doc := appbilling.EstimateDocument{
		Estimate: &entity.Estimate{
			Number: "EST-000001", IssueDate: issue, ExpiresDate: issue.AddDate(0, 0, 30),
			Subtotal: decimal.RequireFromString("130"), TaxRate: decimal.Zero,
			TaxAmount: decimal.Zero, Total: decimal.RequireFromString("130"),
			Terms: "Válido 30 días",
		},
		Status:   entity.EstimateStatusSent,
		Customer: &entity.Customer{Name: "Ana"},
		Items:    sampleItems(),
	}

	out, err := gen.GenerateEstimatePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerate_ContextoCancelado(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(pdf.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.GenerateInvoicePDF(ctx, appbilling.InvoiceDocument{Invoice: &entity.Invoice{}})
	assert.ErrorIs(t, err, context.Canceled)
}
