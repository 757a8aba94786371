package place

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale groups digits the way Indian exam material prints them.
var DefaultLocale = language.MustParse("en-IN")

// numericLabelWords mark labels whose values get thousands separators.
var numericLabelWords = []string{"population", "area", "length", "elevation"}

// Formatter renders numbers for one locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a Formatter for tag.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// FormatNumber groups the digits of v. Up to three fraction digits are kept.
func (f *Formatter) FormatNumber(v float64) string {
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatValue formats raw when it parses as a number, and returns it
// unchanged otherwise.
func (f *Formatter) FormatValue(raw string) string {
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return raw
	}
	return f.FormatNumber(n)
}

// IsNumericLabel reports whether label names a quantity such as a population.
func IsNumericLabel(label string) bool {
	l := strings.ToLower(label)
	for _, w := range numericLabelWords {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

// PrettyKey turns a raw property key into a label: "pop_rank" -> "Pop rank".
func PrettyKey(k string) string {
	return Capitalize(strings.ReplaceAll(strings.TrimSpace(k), "_", " "))
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
