// Package format renders numbers the way Brazilian Portuguese readers expect
// them: "R$ 1.234,56", "12,34%", "1.234".
package format

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang = language.BrazilianPortuguese

func printer() *message.Printer { return message.NewPrinter(lang) }

func Money(f float64) string { return "R$ " + printer().Sprintf("%.2f", f) }

func Int(n int64) string { return printer().Sprintf("%d", n) }

func Percent(f float64) string { return printer().Sprintf("%.2f", f) + "%" }

func Ratio(f float64) string { return printer().Sprintf("%.2f", f) }

func Date(t time.Time) string { return t.Format("02/01/2006") }
