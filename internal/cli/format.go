// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theirongolddev/unitecon/internal/model"
)

// Formatter renders numbers and money for one locale and currency.
type Formatter struct {
	p           *message.Printer
	symbol      string
	symbolFirst bool
}

// NewFormatter builds a Formatter for a BCP 47 locale tag. Unknown tags fall
// back to English.
func NewFormatter(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	f := &Formatter{p: message.NewPrinter(tag), symbol: symbol}
	switch symbol {
	case "$", "US$", "£", "€":
		f.symbolFirst = true
	}
	return f
}

var defaultFormatter = NewFormatter("en", "₽")

// Default returns the English formatter with a ruble suffix.
func Default() *Formatter { return defaultFormatter }

// Number adds group separators to an integer.
// e.g., 1234567 -> "1,234,567"
func (f *Formatter) Number(n int64) string {
	return f.p.Sprintf("%d", n)
}

func (f *Formatter) amount(d decimal.Decimal) string {
	if d.IsInteger() {
		return f.Number(d.IntPart())
	}
	return f.p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func (f *Formatter) withSymbol(s string) string {
	switch {
	case f.symbol == "":
		return s
	case f.symbolFirst:
		if strings.HasPrefix(s, "-") {
			return "-" + f.symbol + s[1:]
		}
		return f.symbol + s
	default:
		return s + " " + f.symbol
	}
}

// Money formats a money amount with the currency symbol.
func (f *Formatter) Money(d decimal.Decimal) string {
	return f.withSymbol(f.amount(d))
}

// CompactMoney formats a money amount with a K/M/B suffix for tight spaces.
// e.g., 2500000 -> "2.5M ₽"
func (f *Formatter) CompactMoney(d decimal.Decimal) string {
	v := d.InexactFloat64()
	abs := math.Abs(v)

	var s string
	switch {
	case abs >= 1_000_000_000:
		s = fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		s = fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		s = fmt.Sprintf("%.1fK", v/1_000)
	default:
		s = f.amount(d)
	}
	return f.withSymbol(s)
}

// MoneyDelta formats a signed money change.
func (f *Formatter) MoneyDelta(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + f.Money(d.Neg())
	}
	return "+" + f.Money(d)
}

// FormatNumber formats n with the default formatter.
func FormatNumber(n int64) string {
	return defaultFormatter.Number(n)
}

// FormatMoney formats d with the default formatter.
func FormatMoney(d decimal.Decimal) string {
	return defaultFormatter.Money(d)
}

// FormatPercent formats a value already expressed in percent with a sign.
// e.g., 50 -> "+50.0%", -20 -> "-20.0%"
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct)
}

// FormatRatio formats a 0-1 fraction as a percentage.
func FormatRatio(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatCountDelta formats a signed integer change.
func FormatCountDelta(n int) string {
	return fmt.Sprintf("%+d", n)
}

// FormatMonths formats a runway figure.
// e.g., 3.6363 -> "3.6 months"
func FormatMonths(m float64) string {
	if m == 1 {
		return "1.0 month"
	}
	return fmt.Sprintf("%.1f months", m)
}

// FormatStatus returns the label shown for a runway band.
func FormatStatus(s model.RunwayStatus) string {
	switch s {
	case model.RunwayCritical:
		return "CRITICAL"
	case model.RunwayCaution:
		return "CAUTION"
	case model.RunwayHealthy:
		return "HEALTHY"
	}
	return strings.ToUpper(string(s))
}

// FormatMonthLabel names a month relative to the first check-in.
func FormatMonthLabel(month int) string {
	return fmt.Sprintf("Month %d", month)
}

// HumanizeKey turns a snake_case table key into a label.
// e.g., "paying_customers" -> "Paying customers"
func HumanizeKey(k string) string {
	s := strings.ReplaceAll(k, "_", " ")
	for _, acr := range []string{"mrr", "arr", "cac", "ltv", "nps"} {
		s = replaceWord(s, acr, strings.ToUpper(acr))
	}
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func replaceWord(s, word, repl string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if f == word {
			fields[i] = repl
		}
	}
	return strings.Join(fields, " ")
}

// Target formats a numeric roadmap target. Rates, margins and retention
// are shown as percentages; MRR and CAC as money.
func (f *Formatter) Target(name string, v float64) string {
	switch {
	case strings.HasSuffix(name, "_rate"), strings.HasSuffix(name, "_margin"), strings.HasSuffix(name, "_retention"):
		return fmt.Sprintf("%.0f%%", v*100)
	case name == "mrr", name == "cac":
		return f.Money(decimal.NewFromFloat(v))
	case name == "ltv_cac_ratio":
		return fmt.Sprintf("%.1f", v)
	case v == math.Trunc(v):
		return f.Number(int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
