package suggestions

import (
	"regexp"
	"strings"

	"github.com/wolfman30/booking-assistant/internal/availability"
)

var yesNoQuestion = regexp.MustCompile(`(?i)\b(would you like|do you want|shall i|should i|can i|is that|are you|does that|would that)\b[^?]*\?`)

var priceQuestion = regexp.MustCompile(`(?i)\b(price|cost|\$\d+)`)

// RuleBased derives quick replies from the bot message without an LLM:
// mentioned times become booking buttons and yes/no questions get Yes/No.
func RuleBased(botMessage string) []QuickReply {
	var out []QuickReply

	if yesNoQuestion.MatchString(botMessage) {
		out = append(out,
			QuickReply{Label: "👍 Yes", Prompt: "Yes"},
			QuickReply{Label: "👎 No", Prompt: "No"},
		)
	}

	for _, slot := range availability.ExtractMentionedSlots(botMessage) {
		out = append(out, QuickReply{Label: "🕒 Book " + slot, Prompt: "I'd like to book " + slot})
	}

	if priceQuestion.MatchString(botMessage) {
		out = append(out, QuickReply{Label: "💳 Payment options", Prompt: "What payment options do you accept?"})
	}

	if len(out) == 0 && strings.Contains(strings.ToLower(botMessage), "book") {
		out = append(out, QuickReply{Label: "📅 Check availability", Prompt: "What times are available?"})
	}
	return out
}
