// Package schedule computes the bookable slots for a doctor over a
// rolling 7-day window. It is a pure read-side projection: nothing here
// mutates state, and the result can be recomputed at will.
package schedule

import (
	"time"

	"github.com/carebook/carebook/internal/domain/doctor"
)

const (
	// WindowDays is the number of day buckets offered, today included.
	WindowDays = 7

	// Interval between candidate slot starts.
	Interval = 30 * time.Minute

	// earliestHour is the first bookable hour of any day.
	earliestHour = 10

	// dayEndHour closes the day; the last slot starts strictly before it.
	dayEndHour = 21

	// DateLayout and TimeLayout are load-bearing: the doctor's
	// booked-slot map is keyed by these exact string forms, and slot
	// matching is string equality.
	DateLayout = "2006-01-02"
	TimeLayout = "03:04 PM"
)

// Slot is one bookable (date, time-of-day) pair.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// AvailableSlots returns WindowDays ordered day buckets of open slots for
// a doctor, bucket 0 being today. A bucket may be empty when its day's
// window has already closed (today after 21:00).
//
// Today's first candidate starts at max(current hour + 1, 10) on the
// hour, with the minute snapped to :30 when the current minute is past
// 30 and :00 otherwise: the next half-hour-aligned slot at least an
// hour out, never before 10:00. Every other day starts at 10:00.
func AvailableSlots(booked doctor.SlotMap, now time.Time) [][]Slot {
	days := make([][]Slot, 0, WindowDays)

	for i := 0; i < WindowDays; i++ {
		year, month, day := now.AddDate(0, 0, i).Date()
		end := time.Date(year, month, day, dayEndHour, 0, 0, 0, now.Location())

		var start time.Time
		if i == 0 {
			hour := now.Hour() + 1
			if hour < earliestHour {
				hour = earliestHour
			}
			minute := 0
			if now.Minute() > 30 {
				minute = 30
			}
			start = time.Date(year, month, day, hour, minute, 0, 0, now.Location())
		} else {
			start = time.Date(year, month, day, earliestHour, 0, 0, 0, now.Location())
		}

		slots := []Slot{}
		for t := start; t.Before(end); t = t.Add(Interval) {
			date := t.Format(DateLayout)
			timeOfDay := t.Format(TimeLayout)
			if booked.Has(date, timeOfDay) {
				continue
			}
			slots = append(slots, Slot{Date: date, Time: timeOfDay})
		}
		days = append(days, slots)
	}

	return days
}
