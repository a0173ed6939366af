package order

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("es-AR"))

// FormatMoney renders cents as pesos with Argentine grouping, e.g. "$ 12.345,50".
// Whole amounts drop the decimals.
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if cents%100 == 0 {
		return sign + printer.Sprintf("$ %d", cents/100)
	}
	return sign + printer.Sprintf("$ %.2f", float64(cents)/100)
}

// FormatQty prints a quantity without trailing zeros, using a decimal comma.
func FormatQty(q float64) string {
	s := strconv.FormatFloat(q, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return strings.Replace(s, ".", ",", 1)
}
