package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds d to öre (2 decimal places), half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PercentChange returns (to - from) / from * 100 rounded to 2 decimal places.
// from must not be zero.
func PercentChange(from, to decimal.Decimal) decimal.Decimal {
	return to.Sub(from).Div(from).Mul(hundred).Round(2)
}

// FormatSEK formats d the Swedish way: space grouped thousands and a decimal comma, e.g. "35 000,00".
func FormatSEK(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

func init() {
	// money is exchanged with the UI as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}
