package availability

import (
	"regexp"
	"sort"
	"strings"
)

// ScanState is the outcome of the structured line scan.
type ScanState int

const (
	// NotFound means no line carried a status keyword next to a time.
	NotFound ScanState = iota
	// NegativeOnly means only UNAVAILABLE/BOOKED lines were seen.
	NegativeOnly
	// Positive means at least one AVAILABLE line was seen.
	Positive
)

func (s ScanState) String() string {
	switch s {
	case NegativeOnly:
		return "negative_only"
	case Positive:
		return "positive"
	default:
		return "not_found"
	}
}

// timeExpr finds a 12-hour time with optional meridiem or a 24-hour time.
var timeExpr = regexp.MustCompile(`\b((1[0-2]|0?[1-9]):([0-5][0-9]) ?([AaPp][Mm])?|([01]?[0-9]|2[0-3]):[0-5][0-9])\b`)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Extraction is the full result of interpreting an availability reply.
type Extraction struct {
	Slots        []TimeSlot
	State        ScanState
	FallbackUsed bool
}

// Strings returns the slots in canonical form.
func (e Extraction) Strings() []string {
	out := make([]string, 0, len(e.Slots))
	for _, s := range e.Slots {
		out = append(out, s.String())
	}
	return out
}

// ExtractAvailableSlots returns the available times mentioned in text as
// canonical strings, deduplicated and in chronological order.
func ExtractAvailableSlots(text string) []string {
	return Extract(text).Strings()
}

// Extract runs the structured line scan and, when that finds no status
// signal at all, the loose whole-text scan.
func Extract(text string) Extraction {
	set := slotSet{}
	state := scanLines(text, set)

	result := Extraction{State: state}
	if state == NotFound {
		set = looseScan(text)
		result.FallbackUsed = true
	}
	result.Slots = set.sorted()
	return result
}

// ExtractMentionedSlots returns every time mentioned in text regardless of status keywords.
func ExtractMentionedSlots(text string) []string {
	return Extraction{Slots: looseScan(text).sorted()}.Strings()
}

func scanLines(text string, set slotSet) ScanState {
	state := NotFound
	for _, line := range strings.Split(lineBreaks.Replace(text), "\n") {
		match := timeExpr.FindString(line)
		if match == "" {
			continue
		}
		upper := strings.ToUpper(line)

		// UNAVAILABLE contains AVAILABLE, so negatives are checked first.
		if strings.Contains(upper, "UNAVAILABLE") || strings.Contains(upper, "BOOKED") {
			if state == NotFound {
				state = NegativeOnly
			}
			continue
		}
		if !strings.Contains(upper, "AVAILABLE") {
			continue
		}
		state = Positive
		if slot, ok := Normalize(match); ok {
			set.add(slot)
		}
	}
	return state
}

func looseScan(text string) slotSet {
	set := slotSet{}
	for _, match := range timeExpr.FindAllString(text, -1) {
		if slot, ok := Normalize(match); ok {
			set.add(slot)
		}
	}
	return set
}

type slotSet map[string]TimeSlot

func (s slotSet) add(slot TimeSlot) {
	s[slot.String()] = slot
}

func (s slotSet) sorted() []TimeSlot {
	out := make([]TimeSlot, 0, len(s))
	for _, slot := range s {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MinutesSinceMidnight() < out[j].MinutesSinceMidnight()
	})
	return out
}

// SortCanonical orders canonical time strings chronologically. Strings that
// cannot be parsed keep their relative order after all valid times.
func SortCanonical(slots []string) []string {
	out := append([]string(nil), slots...)
	sort.SliceStable(out, func(i, j int) bool {
		a, okA := ParseCanonical(out[i])
		b, okB := ParseCanonical(out[j])
		switch {
		case okA && okB:
			return a.MinutesSinceMidnight() < b.MinutesSinceMidnight()
		case okA:
			return true
		default:
			return false
		}
	})
	return out
}
