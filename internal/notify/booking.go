package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/booking-assistant/pkg/logging"
)

// BookingNotice summarizes a confirmed appointment for the front desk.
type BookingNotice struct {
	ClinicName   string
	PatientName  string
	PatientPhone string
	PatientEmail string
	Service      string
	Date         string
	Time         string
	Notes        string
	Reply        string
}

// FrontDeskNotifier emails confirmed bookings to the clinic's front desk.
type FrontDeskNotifier struct {
	sender EmailSender
	to     string
	logger *logging.Logger
}

// NewFrontDeskNotifier returns nil when there is no sender or recipient, which
// callers treat as "notifications disabled".
func NewFrontDeskNotifier(sender EmailSender, to string, logger *logging.Logger) *FrontDeskNotifier {
	if sender == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FrontDeskNotifier{sender: sender, to: strings.TrimSpace(to), logger: logger}
}

// NotifyBooked sends the booking summary.
func (n *FrontDeskNotifier) NotifyBooked(ctx context.Context, notice BookingNotice) error {
	if n == nil {
		return nil
	}
	msg := EmailMessage{
		To:      n.to,
		ToName:  "Front Desk",
		ReplyTo: notice.PatientEmail,
		Subject: fmt.Sprintf("New booking: %s on %s at %s", notice.Service, notice.Date, notice.Time),
		Body:    formatNotice(notice),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: front desk email: %w", err)
	}
	return nil
}

func formatNotice(n BookingNotice) string {
	var b strings.Builder
	if n.ClinicName != "" {
		fmt.Fprintf(&b, "%s\n\n", n.ClinicName)
	}
	fmt.Fprintf(&b, "Name: %s\n", n.PatientName)
	fmt.Fprintf(&b, "Phone: %s\n", n.PatientPhone)
	fmt.Fprintf(&b, "Email: %s\n", n.PatientEmail)
	fmt.Fprintf(&b, "Service: %s\n", n.Service)
	fmt.Fprintf(&b, "Date: %s\n", n.Date)
	fmt.Fprintf(&b, "Time: %s\n", n.Time)
	if strings.TrimSpace(n.Notes) != "" {
		fmt.Fprintf(&b, "Notes: %s\n", n.Notes)
	}
	if strings.TrimSpace(n.Reply) != "" {
		fmt.Fprintf(&b, "\nAssistant reply:\n%s\n", n.Reply)
	}
	return b.String()
}
