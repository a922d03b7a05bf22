package money

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frenchPrinter = message.NewPrinter(language.French)

// FormatEUR renders a cent amount as a French-locale euro string
// (e.g., "-1 234,56 €").
func FormatEUR(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return frenchPrinter.Sprintf("%s%d,%02d €", sign, cents/100, cents%100)
}

// FormatNumeric renders a cent amount as a plain decimal string without a
// currency symbol or separators (e.g., "-1234.56"), suitable for CSV output.
func FormatNumeric(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatBps renders a basis-point rate as a percentage string (2150 -> "21.50%").
func FormatBps(bps int64) string {
	sign := ""
	if bps < 0 {
		sign = "-"
		bps = -bps
	}
	return fmt.Sprintf("%s%d.%02d%%", sign, bps/100, bps%100)
}
