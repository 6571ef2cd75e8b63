package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
)

// PDFUseCase genera la representación gráfica (PDF) de facturas y presupuestos,
// tanto para el administrador como para los enlaces públicos.
type PDFUseCase struct {
	invoices  *InvoiceUseCase
	estimates *EstimateUseCase
	generator PDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(invoices *InvoiceUseCase, estimates *EstimateUseCase, generator PDFGenerator) *PDFUseCase {
	return &PDFUseCase{invoices: invoices, estimates: estimates, generator: generator}
}

// InvoicePDF PDF de la factura por id (requiere permiso de lectura).
func (uc *PDFUseCase) InvoicePDF(ctx context.Context, p access.Principal, id string) ([]byte, string, error) {
	doc, err := uc.invoices.Document(ctx, p, id)
	if err != nil {
		return nil, "", err
	}
	return uc.renderInvoice(ctx, doc)
}

// PublicInvoicePDF PDF de la factura por token público.
func (uc *PDFUseCase) PublicInvoicePDF(ctx context.Context, token string) ([]byte, string, error) {
	doc, err := uc.invoices.documentByToken(ctx, token)
	if err != nil {
		return nil, "", err
	}
	return uc.renderInvoice(ctx, doc)
}

// EstimatePDF PDF del presupuesto por id.
func (uc *PDFUseCase) EstimatePDF(ctx context.Context, p access.Principal, id string) ([]byte, string, error) {
	doc, err := uc.estimates.Document(ctx, p, id)
	if err != nil {
		return nil, "", err
	}
	return uc.renderEstimate(ctx, doc)
}

// PublicEstimatePDF PDF del presupuesto por token público.
func (uc *PDFUseCase) PublicEstimatePDF(ctx context.Context, token string) ([]byte, string, error) {
	doc, err := uc.estimates.documentByToken(ctx, token)
	if err != nil {
		return nil, "", err
	}
	return uc.renderEstimate(ctx, doc)
}

func (uc *PDFUseCase) renderInvoice(ctx context.Context, doc *InvoiceDocument) ([]byte, string, error) {
	b, err := uc.generator.GenerateInvoicePDF(ctx, *doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return b, fmt.Sprintf("factura_%s.pdf", doc.Invoice.Number), nil
}

func (uc *PDFUseCase) renderEstimate(ctx context.Context, doc *EstimateDocument) ([]byte, string, error) {
	b, err := uc.generator.GenerateEstimatePDF(ctx, *doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return b, fmt.Sprintf("presupuesto_%s.pdf", doc.Estimate.Number), nil
}
