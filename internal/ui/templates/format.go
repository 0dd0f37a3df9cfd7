package templates

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money formats v like "$1,234.56".
func Money(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// Count formats n like "1,234".
func Count(n int) string {
	return printer.Sprintf("%d", n)
}
