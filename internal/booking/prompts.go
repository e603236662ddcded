package booking

import (
	"fmt"
	"strings"
)

func availabilityPrompt(date, slotList string) string {
	return fmt.Sprintf(`Check for availability of 30-minute appointment slots on %s at %s. Adjust for timezone before checking.

IMPORTANT: Return the availability in this strict format for each slot:
"HH:MM AM/PM - AVAILABLE" or "HH:MM AM/PM - BOOKED"
`, date, slotList)
}

func bookingPrompt(req BookingRequest) string {
	var b strings.Builder
	b.WriteString("I would like to book an appointment.\n")
	fmt.Fprintf(&b, "Name: %s\n", req.Name)
	fmt.Fprintf(&b, "Phone: %s\n", req.Phone)
	fmt.Fprintf(&b, "Email: %s\n", req.Email)
	fmt.Fprintf(&b, "Service: %s\n", req.Service)
	fmt.Fprintf(&b, "Date: %s\n", req.Date)
	fmt.Fprintf(&b, "Time: %s\n", req.Time)
	fmt.Fprintf(&b, "Notes: %s\n", req.Notes)
	b.WriteString(`
Action: Check availability and book if possible.

RESPONSE FORMAT INSTRUCTIONS:
1. Perform the booking action.
2. Determine if the booking was SUCCESSFUL (slot secured) or FAILED (slot taken, closed, or error).
3. If SUCCESSFUL, start your response strictly with: "BOOKING_SUCCESS"
4. If FAILED, start your response strictly with: "BOOKING_FAILURE"
5. Follow the status tag immediately with a professional, concise message addressed to the patient.
`)
	return b.String()
}
