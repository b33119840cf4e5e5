// Package format renders Brazilian display strings: CPF, phone numbers, CRM
// registrations, prices in reais and dates.
package format

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CPF renders an 11 digit taxpayer id as 000.000.000-00. Anything else is
// returned unchanged.
func CPF(v string) string {
	d := digits(v)
	if len(d) != 11 {
		return v
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// Phone renders an 11 digit mobile number as (00) 00000-0000. Other numbers
// are returned unchanged.
func Phone(v string) string {
	d := digits(v)
	if len(d) != 11 {
		return v
	}
	return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
}

// CRM splits the state prefix from the registration number: SP123456
// becomes SP-123456.
func CRM(v string) string {
	r := []rune(strings.TrimSpace(v))
	if len(r) <= 2 || r[2] == '-' {
		return string(r)
	}
	return string(r[:2]) + "-" + string(r[2:])
}

// Currency renders a price in reais, e.g. R$ 1.234,50.
func Currency(v float64) string {
	return "R$ " + brl.Sprintf("%.2f", v)
}

// Date renders YYYY-MM-DD as dd/mm/yyyy. Unparseable input is returned
// unchanged.
func Date(v string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return v
	}
	return t.Format("02/01/2006")
}
