package availability

// Category buckets a slot by time of day for display.
type Category string

const (
	Morning   Category = "morning"
	Afternoon Category = "afternoon"
	Evening   Category = "evening"
)

// CategoryOf returns Morning before noon, Afternoon until 17:00 and Evening after.
func CategoryOf(slot TimeSlot) Category {
	h := slot.Hour24()
	switch {
	case h < 12:
		return Morning
	case h < 17:
		return Afternoon
	default:
		return Evening
	}
}

// Categories holds canonical slot strings grouped by time of day.
type Categories struct {
	Morning   []string `json:"morning"`
	Afternoon []string `json:"afternoon"`
	Evening   []string `json:"evening"`
}

// Categorize partitions slots into morning, afternoon and evening, keeping
// input order within each bucket. Strings that are not clock times are dropped.
func Categorize(slots []string) Categories {
	c := Categories{
		Morning:   []string{},
		Afternoon: []string{},
		Evening:   []string{},
	}
	for _, raw := range slots {
		slot, ok := ParseCanonical(raw)
		if !ok {
			continue
		}
		switch CategoryOf(slot) {
		case Morning:
			c.Morning = append(c.Morning, raw)
		case Afternoon:
			c.Afternoon = append(c.Afternoon, raw)
		default:
			c.Evening = append(c.Evening, raw)
		}
	}
	return c
}
