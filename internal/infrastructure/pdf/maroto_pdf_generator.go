// Package pdf genera la representación imprimible de facturas y presupuestos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Negocio              │  FACTURA N° + fechas + estado│
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + contacto   │  PROPIEDAD: nombre/dirección │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Total                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto / Total [/ Pagado / Saldo]     │
//	│  PAGOS (solo facturas) + instrucciones de pago               │
//	│  NOTAS / CONDICIONES + QR al enlace público (opcional)       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	mentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"

	appbilling "github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

var _ appbilling.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorHeader  = &props.Color{Red: 0, Green: 70, Blue: 127}
)

const dateLayout = "02/01/2006"

// Options personaliza el generador.
type Options struct {
	Language       language.Tag // agrupación de miles y separador decimal
	CurrencySymbol string
	PublicBaseURL  string // si no está vacío, se imprime un QR al enlace público
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	money   moneyFormatter
	baseURL string
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(opts Options) *MarotoPDFGenerator {
	if opts.Language == language.Und {
		opts.Language = language.AmericanEnglish
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "$"
	}
	return &MarotoPDFGenerator{
		money:   newMoneyFormatter(opts.Language, opts.CurrencySymbol),
		baseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
	}
}

// GenerateInvoicePDF genera el PDF de una factura y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(ctx context.Context, doc appbilling.InvoiceDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := doc.Invoice
	m := maroto.New(pageConfig("Factura "+inv.Number, doc.BusinessName))

	m.AddRows(headerRow(doc.BusinessName, "FACTURA", inv.Number, []string{
		"Emisión: " + inv.IssueDate.Format(dateLayout),
		"Vencimiento: " + inv.DueDate.Format(dateLayout),
		"Estado: " + invoiceStatusLabel(inv.Status),
	}))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(doc.Customer, doc.Property))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(doc.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow([]totalLine{
		{"Subtotal:", g.money.format(inv.Subtotal), false},
		{"Impuesto (" + inv.TaxRate.String() + "%):", g.money.format(inv.TaxAmount), false},
		{"TOTAL:", g.money.format(inv.Total), true},
		{"Pagado:", g.money.format(doc.AmountPaid), false},
		{"SALDO:", g.money.format(doc.BalanceDue), true},
	}))

	if len(doc.Payments) > 0 {
		m.AddRows(sectionTitle("PAGOS RECIBIDOS"))
		m.AddRows(g.paymentRows(doc.Payments)...)
	}
	if doc.PaymentInstructions != "" {
		m.AddRows(sectionTitle("INSTRUCCIONES DE PAGO"))
		m.AddRows(paragraph(doc.PaymentInstructions))
	}
	if inv.Notes != "" {
		m.AddRows(sectionTitle("NOTAS"))
		m.AddRows(paragraph(inv.Notes))
	}
	if r := g.qrRow("/public/invoices/", inv.PublicToken); r != nil {
		m.AddRows(r)
	}

	return generate(m)
}

// GenerateEstimatePDF genera el PDF de un presupuesto y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateEstimatePDF(ctx context.Context, doc appbilling.EstimateDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	est := doc.Estimate
	m := maroto.New(pageConfig("Presupuesto "+est.Number, doc.BusinessName))

	m.AddRows(headerRow(doc.BusinessName, "PRESUPUESTO", est.Number, []string{
		"Emisión: " + est.IssueDate.Format(dateLayout),
		"Válido hasta: " + est.ExpiresDate.Format(dateLayout),
		"Estado: " + estimateStatusLabel(doc.Status),
	}))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(doc.Customer, doc.Property))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(doc.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow([]totalLine{
		{"Subtotal:", g.money.format(est.Subtotal), false},
		{"Impuesto (" + est.TaxRate.String() + "%):", g.money.format(est.TaxAmount), false},
		{"TOTAL:", g.money.format(est.Total), true},
	}))

	if est.Terms != "" {
		m.AddRows(sectionTitle("CONDICIONES"))
		m.AddRows(paragraph(est.Terms))
	}
	if est.Notes != "" {
		m.AddRows(sectionTitle("NOTAS"))
		m.AddRows(paragraph(est.Notes))
	}
	if r := g.qrRow("/public/estimates/", est.PublicToken); r != nil {
		m.AddRows(r)
	}

	return generate(m)
}

func pageConfig(title, author string) *mentity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: negocio (izq) y tipo + número + fechas (der).
func headerRow(business, title, number string, meta []string) core.Row {
	right := []core.Component{
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
		}),
		text.New(number, props.Text{
			Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
		}),
	}
	for i, s := range meta {
		right = append(right, text.New(s, props.Text{
			Size: 8, Align: align.Right, Top: float64(13 + 4*i), Color: colorGray,
		}))
	}
	return row.New(26).Add(
		col.New(7).Add(
			text.New(nonEmpty(business, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(right...),
	)
}

// partiesRow: cliente (izq) y propiedad (der).
func partiesRow(customer *entity.Customer, property *entity.Property) core.Row {
	left := col.New(6)
	if customer != nil {
		left.Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(customer.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Email: %s   |   Tel: %s",
				nonEmpty(customer.Email, "-"), nonEmpty(customer.Phone, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	right := col.New(6)
	if property != nil {
		right.Add(
			text.New("PROPIEDAD", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(property.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(nonEmpty(property.Address, "-"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(left, right)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

// itemRows: una fila por línea.
func (g *MarotoPDFGenerator) itemRows(items []entity.LineItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				g.money.format(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				g.money.format(it.Total),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

type totalLine struct {
	label string
	value string
	grand bool
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(lines []totalLine) core.Row {
	labels := make([]core.Component, 0, len(lines))
	values := make([]core.Component, 0, len(lines))
	for i, l := range lines {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: float64(1 + 5*i)}
		v := props.Text{Size: 9, Align: align.Right, Top: float64(1 + 5*i), Right: 1}
		if l.grand {
			p.Color, p.Size = colorPrimary, 10
			v.Color, v.Size, v.Style = colorPrimary, 10, fontstyle.Bold
		}
		labels = append(labels, text.New(l.label, p))
		values = append(values, text.New(l.value, v))
	}
	return row.New(float64(4 + 5*len(lines))).Add(
		col.New(6),
		col.New(3).Add(labels...),
		col.New(3).Add(values...),
	)
}

// paymentRows: fecha, método e importe de cada pago.
func (g *MarotoPDFGenerator) paymentRows(payments []entity.Payment) []core.Row {
	result := make([]core.Row, 0, len(payments))
	for _, p := range payments {
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(p.PaymentDate.Format(dateLayout), props.Text{Size: 8, Top: 1})),
			col.New(6).Add(text.New(p.Method, props.Text{Size: 8, Top: 1, Color: colorGray})),
			col.New(3).Add(text.New(g.money.format(p.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func sectionTitle(s string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

func paragraph(s string) core.Row {
	lines := strings.Count(s, "\n") + 1
	return row.New(float64(2 + 4*lines)).Add(col.New(12).Add(
		text.New(s, props.Text{Size: 8, Color: colorGray, Top: 1}),
	))
}

// qrRow: QR al enlace público; nil si no hay URL base configurada.
func (g *MarotoPDFGenerator) qrRow(path, token string) core.Row {
	if g.baseURL == "" || token == "" {
		return nil
	}
	link := g.baseURL + path + token
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(link, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(text.New("Consulte este documento en línea escaneando el código QR.", props.Text{
			Size: 8, Top: 12, Left: 3, Color: colorGray,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

var invoiceStatusLabels = map[entity.InvoiceStatus]string{
	entity.InvoiceStatusUnpaid:  "Pendiente",
	entity.InvoiceStatusPartial: "Pago parcial",
	entity.InvoiceStatusPaid:    "Pagada",
}

var estimateStatusLabels = map[entity.EstimateStatus]string{
	entity.EstimateStatusDraft:    "Borrador",
	entity.EstimateStatusSent:     "Enviado",
	entity.EstimateStatusApproved: "Aprobado",
	entity.EstimateStatusRejected: "Rechazado",
	entity.EstimateStatusExpired:  "Vencido",
}

func invoiceStatusLabel(s entity.InvoiceStatus) string {
	return nonEmpty(invoiceStatusLabels[s], string(s))
}

func estimateStatusLabel(s entity.EstimateStatus) string {
	return nonEmpty(estimateStatusLabels[s], string(s))
}
