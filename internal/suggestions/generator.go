package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/booking-assistant/internal/site"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

const maxSuggestions = 5

// QuickReply is a tappable reply button shown under a bot message.
type QuickReply struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// Generator predicts a visitor's next replies to a bot message.
type Generator struct {
	llm     LLMClient
	variant site.Variant
	logger  *logging.Logger
	timeout time.Duration
}

// NewGenerator builds a generator. llm may be nil, in which case only rule-based suggestions are produced.
func NewGenerator(llm LLMClient, variant site.Variant, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{llm: llm, variant: variant, logger: logger, timeout: 8 * time.Second}
}

// Suggest returns up to five quick replies. LLM failures degrade to rules.
func (g *Generator) Suggest(ctx context.Context, botMessage string, fallback []QuickReply) []QuickReply {
	botMessage = strings.TrimSpace(botMessage)
	if botMessage == "" {
		return capReplies(dedupe(fallback))
	}

	if g.llm != nil {
		replies, err := g.fromLLM(ctx, botMessage, fallback)
		if err == nil && len(replies) > 0 {
			return capReplies(dedupe(replies))
		}
		if err != nil {
			g.logger.Warn("llm suggestions failed, using rules", "error", err)
		}
	}
	return capReplies(dedupe(append(RuleBased(botMessage), fallback...)))
}

func (g *Generator) fromLLM(ctx context.Context, botMessage string, fallback []QuickReply) ([]QuickReply, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	labels := make([]string, 0, len(fallback))
	for _, f := range fallback {
		labels = append(labels, f.Label)
	}
	labelJSON, _ := json.Marshal(labels)

	resp, err := g.llm.Complete(ctx, LLMRequest{
		System:      g.systemPrompt(),
		Prompt:      fmt.Sprintf("Bot Message: %q\n\nFallback/Template Options: %s", botMessage, labelJSON),
		MaxTokens:   200,
		Temperature: 0.5,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}
	return ParseReplies(resp.Text)
}

func (g *Generator) systemPrompt() string {
	return fmt.Sprintf(`You are an intelligent UX assistant for the %s website chatbot named %s.
Your goal is to predict the user's next likely actions based on the bot's message and generate 3-5 "Quick Reply" buttons.

Context:
- Business: %s
- Services: %s

Rules for Suggestions:
1. Analyze the Bot's Message for intent (e.g., asking for time, offering price, greeting).
2. Generate specific, actionable replies.
3. If the bot asks a Yes/No question, include "Yes" and "No" buttons, but also context-specific ones (e.g., "Yes, book 10am").
4. If specific times are mentioned (e.g., "10:00 AM is free"), create a button like "Book 10:00 AM".
5. Be concise. Label max 3-4 words.
6. ALWAYS include a relevant emoji at the beginning of every Label.

Output Format:
Return ONLY a raw JSON array.
[{"label": "Button Text", "prompt": "Full message text to send"}]`,
		g.variant.Key, g.variant.AssistantName, g.variant.ClinicName, strings.Join(g.variant.Services, ", "))
}

// ParseReplies decodes an LLM's JSON array of quick replies, tolerating code
// fences and prose around the array. Entries without a label are dropped.
func ParseReplies(text string) ([]QuickReply, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("suggestions: no JSON array in reply")
	}

	var raw []QuickReply
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("suggestions: decode replies: %w", err)
	}
	out := make([]QuickReply, 0, len(raw))
	for _, r := range raw {
		r.Label = strings.TrimSpace(r.Label)
		r.Prompt = strings.TrimSpace(r.Prompt)
		if r.Label == "" {
			continue
		}
		if r.Prompt == "" {
			r.Prompt = r.Label
		}
		out = append(out, r)
	}
	return out, nil
}

func dedupe(replies []QuickReply) []QuickReply {
	seen := make(map[string]struct{}, len(replies))
	out := make([]QuickReply, 0, len(replies))
	for _, r := range replies {
		key := strings.ToLower(strings.TrimSpace(r.Label))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func capReplies(replies []QuickReply) []QuickReply {
	if len(replies) > maxSuggestions {
		return replies[:maxSuggestions]
	}
	return replies
}
