package pdf

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMoneyFormatter(t *testing.T) {
	us := newMoneyFormatter(language.AmericanEnglish, "$")
	es := newMoneyFormatter(language.Spanish, "$")

	cases := []struct {
		in string
		us string
		es string
	}{
		{"0", "$0.00", "$0,00"},
		{"143", "$143.00", "$143,00"},
		{"12345.5", "$12,345.50", "$12.345,50"},
		{"1000000.05", "$1,000,000.05", "$1.000.000,05"},
		{"-7", "-$7.00", "-$7,00"},
	}
	for _, c := range cases {
		d := decimal.RequireFromString(c.in)
		assert.Equal(t, c.us, us.format(d), c.in)
		assert.Equal(t, c.es, es.format(d), c.in)
	}
}
