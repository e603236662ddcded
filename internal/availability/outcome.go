package availability

import (
	"encoding/json"
	"strings"
)

// Outcome classifies a booking confirmation reply.
type Outcome int

const (
	// Unknown is reserved for callers that never received a reply.
	Unknown Outcome = iota
	Success
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the outcome as its string name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON accepts the string names produced by MarshalJSON.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "success":
		*o = Success
	case "failure":
		*o = Failure
	default:
		*o = Unknown
	}
	return nil
}

const (
	tagSuccess   = "BOOKING_SUCCESS"
	tagConfirmed = "BOOKING_CONFIRMED"
	tagFailure   = "BOOKING_FAILURE"
)

var negativePhrases = []string{
	"already booked",
	"not available",
	"unavailable",
	"taken",
	"full",
	"unfortunately",
	"sorry",
	"error",
	"choose another",
	"try again",
	"try a different",
}

var positivePhrases = []string{
	"confirm",
	"successfully booked",
	"appointment is booked",
	"scheduled",
	"reserved",
	"set",
	"success",
	"looking forward",
}

// ClassifyBookingOutcome reads a booking reply. Explicit status tags win;
// otherwise any negative phrase means Failure and Success needs a positive
// phrase (or "booked" with no negative phrase). It never returns Unknown.
func ClassifyBookingOutcome(text string) Outcome {
	if strings.Contains(text, tagSuccess) || strings.Contains(text, tagConfirmed) {
		return Success
	}
	if strings.Contains(text, tagFailure) {
		return Failure
	}

	lower := strings.ToLower(text)
	negative := containsAny(lower, negativePhrases)
	positive := containsAny(lower, positivePhrases) || (strings.Contains(lower, "booked") && !negative)
	if !negative && positive {
		return Success
	}
	return Failure
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
