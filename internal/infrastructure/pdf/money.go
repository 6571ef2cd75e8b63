package pdf

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// moneyFormatter imprime importes con los separadores del idioma y dos decimales.
type moneyFormatter struct {
	printer *message.Printer
	symbol  string
	decimal string
}

func newMoneyFormatter(tag language.Tag, symbol string) moneyFormatter {
	p := message.NewPrinter(tag)
	sep := strings.Trim(p.Sprint(number.Decimal(0.5, number.Scale(1))), "05")
	if sep == "" {
		sep = "."
	}
	return moneyFormatter{printer: p, symbol: symbol, decimal: sep}
}

// format: 12345.5 → "$12,345.50" (en-US), "$12.345,50" (es).
// Agrupación de miles vía printer; centavos exactos desde el decimal.
func (f moneyFormatter) format(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	grouped := f.printer.Sprint(number.Decimal(whole.IntPart()))
	return fmt.Sprintf("%s%s%s%s%02d", sign, f.symbol, grouped, f.decimal, cents)
}
