package suggestions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/booking-assistant/internal/site"
)

type stubLLM struct {
	text  string
	err   error
	calls int
	last  LLMRequest
}

func (s *stubLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return LLMResponse{Text: s.text}, nil
}

func dental(t *testing.T) site.Variant {
	t.Helper()
	v, err := site.Lookup("dental")
	require.NoError(t, err)
	return v
}

func TestGenerator_UsesLLM(t *testing.T) {
	llm := &stubLLM{text: "```json\n[{\"label\":\"📅 Book 10:00 AM\",\"prompt\":\"Book me at 10:00 AM\"},{\"label\":\"❓ Prices\"}]\n```"}
	g := NewGenerator(llm, dental(t), nil)

	got := g.Suggest(context.Background(), "10:00 AM is free tomorrow. Want it?", []QuickReply{{Label: "Talk to staff"}})
	require.Len(t, got, 2)
	assert.Equal(t, "Book me at 10:00 AM", got[0].Prompt)
	assert.Equal(t, "❓ Prices", got[1].Prompt, "missing prompt falls back to label")
	assert.True(t, llm.last.JSON)
	assert.Contains(t, llm.last.System, "Dr. Smith's Family & Cosmetic Dentistry")
	assert.Contains(t, llm.last.Prompt, `["Talk to staff"]`)
}

func TestGenerator_FallsBackToRules(t *testing.T) {
	llm := &stubLLM{err: errors.New("quota exceeded")}
	g := NewGenerator(llm, dental(t), nil)

	got := g.Suggest(context.Background(), "I have 9:00 AM or 2:30 PM open. Would you like one of those?", []QuickReply{{Label: "👍 yes", Prompt: "Yes"}, {Label: "Call me", Prompt: "Please call me"}})
	labels := make([]string, 0, len(got))
	for _, r := range got {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"👍 Yes", "👎 No", "🕒 Book 09:00 AM", "🕒 Book 02:30 PM", "Call me"}, labels)
	assert.Equal(t, 1, llm.calls)
}

func TestGenerator_NoLLM(t *testing.T) {
	g := NewGenerator(nil, dental(t), nil)
	got := g.Suggest(context.Background(), "   ", []QuickReply{{Label: "A"}, {Label: "a"}, {Label: ""}})
	assert.Equal(t, []QuickReply{{Label: "A"}}, got)
}

func TestGenerator_CapsAtFive(t *testing.T) {
	g := NewGenerator(nil, dental(t), nil)
	msg := "Open: 9:00 AM, 9:30 AM, 10:00 AM, 10:30 AM, 11:00 AM, 11:30 AM"
	assert.Len(t, g.Suggest(context.Background(), msg, nil), maxSuggestions)
}

func TestParseReplies(t *testing.T) {
	_, err := ParseReplies("no json here")
	assert.Error(t, err)

	_, err = ParseReplies("[not valid]")
	assert.Error(t, err)

	got, err := ParseReplies(`Sure! [{"label":" Yes ","prompt":" Yes please "}] hope this helps`)
	require.NoError(t, err)
	assert.Equal(t, []QuickReply{{Label: "Yes", Prompt: "Yes please"}}, got)
}

func TestRuleBased(t *testing.T) {
	assert.Empty(t, RuleBased("Hello there."))
	assert.Equal(t, []QuickReply{{Label: "📅 Check availability", Prompt: "What times are available?"}}, RuleBased("I can help you book."))

	got := RuleBased("Whitening costs $299.")
	require.Len(t, got, 1)
	assert.Equal(t, "💳 Payment options", got[0].Label)
}

func TestFallbackLLMClient(t *testing.T) {
	assert.Nil(t, NewFallbackLLMClient(nil, nil, nil))

	only := &stubLLM{text: "only"}
	assert.Same(t, only, NewFallbackLLMClient(nil, only, nil))

	primary := &stubLLM{err: errors.New("primary down")}
	fallback := &stubLLM{text: "from fallback"}
	client := NewFallbackLLMClient(primary, fallback, nil)
	resp, err := client.Complete(context.Background(), LLMRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", resp.Text)

	noFallback := NewFallbackLLMClient(primary, nil, nil)
	_, err = noFallback.Complete(context.Background(), LLMRequest{Prompt: "x"})
	assert.EqualError(t, err, "primary down")

	bothDown := NewFallbackLLMClient(primary, &stubLLM{err: errors.New("fallback down")}, nil)
	_, err = bothDown.Complete(context.Background(), LLMRequest{Prompt: "x"})
	assert.EqualError(t, err, "fallback down")
}

func TestNewGeminiLLMClientRequiresKey(t *testing.T) {
	_, err := NewGeminiLLMClient(context.Background(), " ", "")
	assert.Error(t, err)
}
