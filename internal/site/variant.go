package site

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/booking-assistant/internal/availability"
)

// Variant describes one of the marketing sites served by this backend.
type Variant struct {
	Key            string
	ClinicName     string
	AssistantName  string
	Services       []string
	OpenHour       int // first slot, 24h clock
	CloseHour      int // last slot starts at CloseHour:30
	SlotMinutes    int
	ClosedWeekdays []time.Weekday
}

var variants = map[string]Variant{
	"dental": {
		Key:           "dental",
		ClinicName:    "Dr. Smith's Family & Cosmetic Dentistry",
		AssistantName: "Sarah",
		Services: []string{
			"New Patient Special",
			"Emergency Exam",
			"Invisalign Clear Aligners",
			"Zoom Teeth Whitening",
			"Porcelain Veneers",
			"Dental Implants",
		},
		OpenHour:       9,
		CloseHour:      17,
		SlotMinutes:    30,
		ClosedWeekdays: []time.Weekday{time.Sunday},
	},
	"salon": {
		Key:           "salon",
		ClinicName:    "Luxe Hair & Beauty Studio",
		AssistantName: "Roxy",
		Services: []string{
			"Haircut & Styling",
			"Hair Coloring",
			"Keratin Treatment",
			"Manicure & Pedicure",
			"Bridal Makeup",
			"Facial & Skincare",
		},
		OpenHour:       9,
		CloseHour:      17,
		SlotMinutes:    30,
		ClosedWeekdays: []time.Weekday{time.Sunday},
	},
}

// Lookup returns the variant registered under key.
func Lookup(key string) (Variant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Variant{}, fmt.Errorf("site: unknown variant %q", key)
	}
	return v, nil
}

// SlotGrid returns every bookable slot of the day in canonical form.
func (v Variant) SlotGrid() []string {
	step := v.SlotMinutes
	if step <= 0 {
		step = 30
	}
	var out []string
	for m := v.OpenHour * 60; m < (v.CloseHour+1)*60; m += step {
		slot, ok := availability.NormalizeString(fmt.Sprintf("%02d:%02d", m/60, m%60))
		if ok {
			out = append(out, slot)
		}
	}
	return out
}

// PromptSlotList renders the slot grid as the comma-separated list sent upstream.
func (v Variant) PromptSlotList() string {
	return strings.Join(v.SlotGrid(), ", ")
}

// IsClosed reports whether the clinic is closed on date.
func (v Variant) IsClosed(date time.Time) bool {
	for _, d := range v.ClosedWeekdays {
		if date.Weekday() == d {
			return true
		}
	}
	return false
}

// ClosedMessage explains why a closed date cannot be booked.
func (v Variant) ClosedMessage(date time.Time) string {
	noun := "clinic"
	if v.Key == "salon" {
		noun = "salon"
	}
	return fmt.Sprintf("The %s is closed on %ss. Please select a different date.", noun, date.Weekday())
}

// OffersService reports whether name matches one of the variant's services, ignoring case.
func (v Variant) OffersService(name string) bool {
	name = strings.TrimSpace(name)
	for _, s := range v.Services {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
