// Package calendar resolves the class-local dates the jobs work with.
package calendar

import (
	"time"
	_ "time/tzdata"
)

const (
	DateLayout   = "2006-01-02"
	DateLayoutBR = "02/01/2006"

	DefaultZone = "America/Sao_Paulo"
)

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// Tomorrow returns the calendar date following now's date in loc.
// AddDate works on the local calendar, so a DST transition in loc does not shift the result.
func Tomorrow(now time.Time, loc *time.Location) string {
	return now.In(loc).AddDate(0, 0, 1).Format(DateLayout)
}

// FormatBR renders a YYYY-MM-DD date as DD/MM/YYYY. Unparseable input is returned as is.
func FormatBR(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(DateLayoutBR)
}

// MustLoadDefault returns the default class zone. tzdata is embedded, so this cannot fail in practice.
func MustLoadDefault() *time.Location {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		panic(err)
	}
	return loc
}
