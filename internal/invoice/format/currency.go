// Package format holds the pure display-formatting helpers: locale-aware
// currency strings, currency symbols, payment-method labels, and export
// filenames. Everything here is deterministic and free of I/O so it can be
// unit-tested independently of rendering.
package format

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Money formats an amount as a full locale-aware currency string,
// e.g. 1234.5 USD -> "$1,234.50". x/text separates the symbol from the
// number with a space; the en-US display format has none, so every space
// rune is stripped.
func Money(amount float64, code domain.CurrencyCode) string {
	unit := parseUnit(code)
	formatted := printer.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, formatted)
}

// Symbol derives the bare currency symbol by formatting zero in the target
// currency and stripping digits, punctuation and whitespace. Table and
// summary cells prefix this to plain decimal numbers instead of repeating
// the full locale string.
func Symbol(code domain.CurrencyCode) string {
	zero := Money(0, code)
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '.', ',':
			return -1
		}
		return r
	}, zero)
}

// Amount renders a plain decimal number with exactly two fraction digits.
func Amount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// Quantity renders a count without trailing fraction zeros: 2 -> "2",
// 2.50 -> "2.5".
func Quantity(value float64) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func parseUnit(code domain.CurrencyCode) currency.Unit {
	unit, err := currency.ParseISO(string(code))
	if err != nil {
		return currency.USD
	}
	return unit
}

// SymbolTable returns the symbol for every supported currency; handy for
// clients that want to label inputs the way the export does.
func SymbolTable() map[domain.CurrencyCode]string {
	out := make(map[domain.CurrencyCode]string, len(domain.SupportedCurrencies))
	for _, code := range domain.SupportedCurrencies {
		out[code] = Symbol(code)
	}
	return out
}
