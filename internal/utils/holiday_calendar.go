package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// peakNights lists the observed holidays that quotes flag to guests.
var peakNights = func() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ColumbusDay,
		us.VeteransDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
	return c
}()

// HolidayNights returns every night of [checkIn, checkOut) that falls on a
// holiday, formatted with layout. Never nil.
func HolidayNights(checkIn, checkOut time.Time, layout string) []string {
	nights := []string{}
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		if observed, _, _ := peakNights.IsHoliday(d); observed {
			nights = append(nights, d.Format(layout))
		}
	}
	return nights
}
