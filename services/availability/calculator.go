// Package availability computes bookable start times for a slot and day.
// It is the single source of truth consulted both to render options and to
// validate a submitted booking, so it must stay pure and side-effect-free.
package availability

import (
	"fmt"
	"time"

	"bookline/models"
)

// Compute returns the ordered fixed-step start times (minutes from
// midnight) bookable on the slot for the given civil date. A start time
// qualifies when it lies within the weekday's open/close window, is
// strictly in the future relative to now, and is not covered by any active
// appointment interval or blocked range. Closed days and unset hours yield
// nil. No maximum is imposed; callers truncate for display.
//
// All date arithmetic is anchored to loc; now is converted into it before
// any comparison.
func Compute(
	slot *models.Slot,
	appts []models.Appointment,
	blocks []models.BlockedRange,
	date string,
	now time.Time,
	stepMin int,
	loc *time.Location,
) []int {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil
	}

	hours := slot.Hours(day.Weekday())
	if hours.Closed || hours.CloseMin <= hours.OpenMin {
		return nil
	}

	now = now.In(loc)

	var starts []int
	for t := hours.OpenMin; t+stepMin <= hours.CloseMin; t += stepMin {
		abs := day.Add(time.Duration(t) * time.Minute)
		if !abs.After(now) {
			continue
		}
		if coveredByAppointment(t, appts) || coveredByBlock(t, blocks) {
			continue
		}
		starts = append(starts, t)
	}
	return starts
}

// Contains reports whether startMin is one of the computed starts.
func Contains(starts []int, startMin int) bool {
	for _, s := range starts {
		if s == startMin {
			return true
		}
	}
	return false
}

func coveredByAppointment(t int, appts []models.Appointment) bool {
	for i := range appts {
		if !appts[i].Active() {
			continue
		}
		if t >= appts[i].StartMin && t < appts[i].EndMin() {
			return true
		}
	}
	return false
}

func coveredByBlock(t int, blocks []models.BlockedRange) bool {
	for i := range blocks {
		if t >= blocks[i].StartMin && t < blocks[i].EndMin {
			return true
		}
	}
	return false
}

// Label renders minutes from midnight as a 24h clock string, e.g. "09:00".
func Label(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Labels renders a list of start minutes for display.
func Labels(starts []int) []string {
	out := make([]string, len(starts))
	for i, s := range starts {
		out[i] = Label(s)
	}
	return out
}
