// Package format met en forme les valeurs affichées (pt-BR) et exporte les tableaux en CSV.
package format

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const placeholder = "-"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Currency : réais sans décimales, ex. "R$ 1.235".
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return placeholder
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "R$ " + printer.Sprint(number.Decimal(math.Round(v), number.MaxFractionDigits(0)))
}

// CurrencyDecimal formate un montant décimal en réais.
func CurrencyDecimal(d decimal.Decimal) string {
	return Currency(d.InexactFloat64())
}

// Number : séparateurs pt-BR, au plus trois décimales.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return placeholder
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Int formate un entier.
func Int(n int) string {
	return Number(float64(n))
}

// Percent : ratio → "12.5%" avec digits décimales.
func Percent(ratio float64, digits int) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return placeholder
	}
	return strconv.FormatFloat(ratio*100, 'f', digits, 64) + "%"
}

// PercentPtr : un ratio indéfini (nil) s'affiche "-".
func PercentPtr(ratio *float64, digits int) string {
	if ratio == nil {
		return placeholder
	}
	return Percent(*ratio, digits)
}
