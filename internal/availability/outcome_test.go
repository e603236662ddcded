package availability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBookingOutcome(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Outcome
	}{
		{name: "success tag", text: "BOOKING_SUCCESS: You're all set for 3pm!", want: Success},
		{name: "confirmed tag", text: "BOOKING_CONFIRMED - see you soon", want: Success},
		{name: "success tag beats negative words", text: "BOOKING_SUCCESS sorry for the wait", want: Success},
		{name: "failure tag", text: "BOOKING_FAILURE The 3pm slot is gone.", want: Failure},
		{name: "lowercase tag falls through to keywords", text: "booking_success", want: Success},
		{name: "negative keywords", text: "Unfortunately that slot is taken, please try again.", want: Failure},
		{name: "booked without negative", text: "Your appointment is booked for Tuesday.", want: Success},
		{name: "plain booked", text: "Done, you're booked for 3pm.", want: Success},
		{name: "sorry and error", text: "I'm sorry, an error occurred while booking.", want: Failure},
		{name: "already booked", text: "That time is already booked.", want: Failure},
		{name: "scheduled", text: "You are scheduled with Dr. Smith.", want: Success},
		{name: "looking forward", text: "We are looking forward to seeing you!", want: Success},
		{name: "no signal", text: "Thanks for reaching out.", want: Failure},
		{name: "empty", text: "", want: Failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBookingOutcome(tt.text))
		})
	}
}

func TestClassifyBookingOutcome_NeverUnknown(t *testing.T) {
	for _, text := range []string{"", "???", "BOOKING", "12:00 PM"} {
		assert.NotEqual(t, Unknown, ClassifyBookingOutcome(text))
	}
}

func TestOutcomeJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Outcome{"outcome": Success})
	require.NoError(t, err)
	assert.JSONEq(t, `{"outcome":"success"}`, string(data))

	var o Outcome
	require.NoError(t, json.Unmarshal([]byte(`"failure"`), &o))
	assert.Equal(t, Failure, o)
	assert.Equal(t, "unknown", Unknown.String())
}
