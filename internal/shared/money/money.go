package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when a caller formats an amount without a currency.
const DefaultCurrency = "USD"

var symbols = map[string]string{
	"USD": "$",
	"BRL": "R$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
	"MXN": "MX$",
	"CHF": "CHF ",
}

var printer = message.NewPrinter(language.English)

// IsValidCurrency reports whether code is a recognized ISO 4217 currency code.
func IsValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}

// Format renders an amount the way the dashboard shows it: symbol, grouped
// thousands and two decimals ("$1,234.56", "-R$10.00"). Unknown currencies
// are prefixed with their ISO code.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	f, _ := d.Float64()
	number := printer.Sprintf("%.2f", f)

	symbol, ok := symbols[code]
	if !ok {
		symbol = code + " "
	}
	return sign + symbol + number
}

// Round2 rounds a float to cents using decimal arithmetic.
func Round2(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}
