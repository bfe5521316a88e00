package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is the locale every CSV report uses: German grouping and
// decimal separators, e.g. 1.234,567.
var DefaultLocale = language.German

// maxFractionDigits matches the usual decimal format of the default locale.
const maxFractionDigits = 3

// NumberFormat renders floats with one fixed locale.
type NumberFormat struct {
	printer *message.Printer
}

// NewNumberFormat creates a formatter for tag.
func NewNumberFormat(tag language.Tag) *NumberFormat {
	return &NumberFormat{printer: message.NewPrinter(tag)}
}

// Format renders v with grouping and at most three fraction digits.
func (nf *NumberFormat) Format(v float64) string {
	return nf.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(maxFractionDigits)))
}
