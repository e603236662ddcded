package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Meridiem is the AM/PM half of a 12-hour clock time.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// TimeSlot is a wall-clock time in 12-hour form. Hour is 1-12.
type TimeSlot struct {
	Hour     int
	Minute   int
	Meridiem Meridiem
}

// String renders the canonical "hh:mm AM/PM" form.
func (t TimeSlot) String() string {
	return fmt.Sprintf("%02d:%02d %s", t.Hour, t.Minute, t.Meridiem)
}

// Hour24 returns the hour on a 0-23 clock.
func (t TimeSlot) Hour24() int {
	h := t.Hour % 12
	if t.Meridiem == PM {
		h += 12
	}
	return h
}

// MinutesSinceMidnight is the sort key for slots within one business day.
func (t TimeSlot) MinutesSinceMidnight() int {
	return t.Hour24()*60 + t.Minute
}

func (t TimeSlot) valid() bool {
	if t.Hour < 1 || t.Hour > 12 {
		return false
	}
	if t.Minute < 0 || t.Minute > 59 {
		return false
	}
	return t.Meridiem == AM || t.Meridiem == PM
}

// clockPattern matches a whole candidate string: h:mm with an optional meridiem.
var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp]\.?[Mm]\.?)?$`)

// Normalize parses a clock time such as "9:00", "9:00 AM", "09:00am" or "14:30".
// Without a meridiem the hour is read on a 24-hour clock; with one it must be 1-12.
func Normalize(raw string) (TimeSlot, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return TimeSlot{}, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return TimeSlot{}, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return TimeSlot{}, false
	}

	marker := strings.ToUpper(strings.ReplaceAll(m[3], ".", ""))
	var slot TimeSlot
	switch marker {
	case "":
		if hour > 23 {
			return TimeSlot{}, false
		}
		slot = from24(hour, minute)
	case "AM", "PM":
		if hour < 1 || hour > 12 {
			return TimeSlot{}, false
		}
		slot = TimeSlot{Hour: hour, Minute: minute, Meridiem: Meridiem(marker)}
	default:
		return TimeSlot{}, false
	}
	if !slot.valid() {
		return TimeSlot{}, false
	}
	return slot, true
}

// NormalizeString returns the canonical form of raw, or false if it cannot be read.
func NormalizeString(raw string) (string, bool) {
	slot, ok := Normalize(raw)
	if !ok {
		return "", false
	}
	return slot.String(), true
}

// ParseCanonical reads a slot previously rendered with String. It accepts the
// same inputs as Normalize so loosely formatted callers still sort sensibly.
func ParseCanonical(s string) (TimeSlot, bool) {
	return Normalize(s)
}

func from24(hour, minute int) TimeSlot {
	switch {
	case hour == 0:
		return TimeSlot{Hour: 12, Minute: minute, Meridiem: AM}
	case hour < 12:
		return TimeSlot{Hour: hour, Minute: minute, Meridiem: AM}
	case hour == 12:
		return TimeSlot{Hour: 12, Minute: minute, Meridiem: PM}
	default:
		return TimeSlot{Hour: hour - 12, Minute: minute, Meridiem: PM}
	}
}
