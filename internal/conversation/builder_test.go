package conversation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/parley-llm/parley/internal/domain"
)

func msg(role domain.Role, content string) domain.Message {
	return domain.NewMessage(role, content)
}

func roles(msgs []domain.Message) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = string(m.Role)
	}
	return strings.Join(parts, ",")
}

func TestBuildAppendsPrompt(t *testing.T) {
	built := Build(nil, "hello", Profile{}, Options{})
	if len(built.Messages) != 1 {
		t.Fatalf("messages = %v", built.Messages)
	}
	if built.Messages[0].Role != domain.RoleUser || built.Messages[0].Content != "hello" {
		t.Errorf("got %+v", built.Messages[0])
	}
}

func TestBuildDropsTrailingDuplicatePrompt(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleUser, "earlier"),
		msg(domain.RoleAssistant, "reply"),
		msg(domain.RoleUser, "repeat me"),
	}
	built := Build(history, "repeat me", Profile{}, Options{})
	if got := roles(built.Messages); got != "user,assistant,user" {
		t.Errorf("roles = %s", got)
	}
	last := built.Messages[len(built.Messages)-1]
	if last.Content != "repeat me" {
		t.Errorf("last = %q", last.Content)
	}
}

func TestBuildDropsEmptyMessages(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleUser, "   "),
		msg(domain.RoleAssistant, ""),
		msg(domain.RoleUser, "kept"),
	}
	built := Build(history, "q", Profile{}, Options{})
	if len(built.Messages) != 2 {
		t.Errorf("messages = %v", built.Messages)
	}
}

func TestBuildRequireUserFirst(t *testing.T) {
	history := []domain.Message{msg(domain.RoleAssistant, "greeting")}
	built := Build(history, "q", Profile{RequireUserFirst: true}, Options{})
	if got := roles(built.Messages); got != "user,assistant,user" {
		t.Fatalf("roles = %s", got)
	}
	if built.Messages[0].Content != placeholderContent {
		t.Errorf("placeholder content = %q", built.Messages[0].Content)
	}
}

func TestBuildStrictAlternation(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleUser, "one"),
		msg(domain.RoleUser, "two"),
	}
	built := Build(history, "three", Profile{StrictAlternation: true}, Options{})
	if got := roles(built.Messages); got != "user,assistant,user,assistant,user" {
		t.Fatalf("roles = %s", got)
	}
	if built.Messages[1].Content != placeholderContent {
		t.Errorf("synthetic turn content = %q", built.Messages[1].Content)
	}
}

func TestBuildAlternationRepairAfterDedupe(t *testing.T) {
	// The trailing user turn duplicates the new prompt and is dropped,
	// leaving two consecutive assistant turns to repair with exactly one
	// synthetic user message.
	history := []domain.Message{
		msg(domain.RoleAssistant, "first"),
		msg(domain.RoleAssistant, "second"),
		msg(domain.RoleUser, "the prompt"),
	}
	built := Build(history, "the prompt", Profile{StrictAlternation: true}, Options{})
	if got := roles(built.Messages); got != "assistant,user,assistant,user" {
		t.Fatalf("roles = %s", got)
	}
	placeholders := 0
	for _, m := range built.Messages {
		if m.Content == placeholderContent {
			placeholders++
		}
	}
	if placeholders != 1 {
		t.Errorf("placeholders = %d, want 1", placeholders)
	}
	for i := 1; i < len(built.Messages); i++ {
		if built.Messages[i-1].Role == built.Messages[i].Role {
			t.Errorf("consecutive same-role turns at %d: %s", i, roles(built.Messages))
		}
	}
}

func TestBuildSystemOutOfBand(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleSystem, "be brief"),
		msg(domain.RoleSystem, "be kind"),
		msg(domain.RoleUser, "hi"),
		msg(domain.RoleAssistant, "hello"),
	}
	built := Build(history, "q", Profile{SystemOutOfBand: true}, Options{})
	if built.System != "be brief\n\nbe kind" {
		t.Errorf("system = %q", built.System)
	}
	if got := roles(built.Messages); got != "user,assistant,user" {
		t.Errorf("roles = %s", got)
	}
}

func TestBuildSystemInline(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleSystem, "be brief"),
		msg(domain.RoleUser, "hi"),
	}
	built := Build(history, "q", Profile{}, Options{})
	if got := roles(built.Messages); got != "system,user,user" {
		t.Errorf("roles = %s", got)
	}
}

func TestBuildPairWindow(t *testing.T) {
	var history []domain.Message
	for i := 0; i < 4; i++ {
		history = append(history,
			msg(domain.RoleUser, fmt.Sprintf("q%d", i)),
			msg(domain.RoleAssistant, fmt.Sprintf("a%d", i)),
		)
	}
	built := Build(history, "latest", Profile{}, Options{MaxPairs: 1})
	if len(built.Messages) != 3 {
		t.Fatalf("messages = %v", built.Messages)
	}
	if built.Messages[0].Content != "q3" || built.Messages[1].Content != "a3" {
		t.Errorf("window kept %q/%q, want q3/a3", built.Messages[0].Content, built.Messages[1].Content)
	}
}

func TestBuildPairWindowPreservesSystem(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleSystem, "persona"),
		msg(domain.RoleUser, "old q"),
		msg(domain.RoleAssistant, "old a"),
		msg(domain.RoleUser, "new q"),
		msg(domain.RoleAssistant, "new a"),
	}
	built := Build(history, "latest", Profile{}, Options{MaxPairs: 1})
	if built.Messages[0].Role != domain.RoleSystem {
		t.Fatalf("system dropped by window: %s", roles(built.Messages))
	}
	if built.Messages[1].Content != "new q" {
		t.Errorf("window kept %q, want new q", built.Messages[1].Content)
	}
}

func TestBuildTokenBudgetKeepsFinalUserMessage(t *testing.T) {
	long := strings.Repeat("many words of history ", 50)
	history := []domain.Message{
		msg(domain.RoleUser, long),
		msg(domain.RoleAssistant, long),
	}
	built := Build(history, "short question", Profile{}, Options{
		MaxContextTokens: 10,
		Model:            "gpt-4",
	})
	if len(built.Messages) != 1 {
		t.Fatalf("messages = %v", roles(built.Messages))
	}
	if built.Messages[0].Content != "short question" {
		t.Errorf("kept %q", built.Messages[0].Content)
	}
}

func TestBuildSanitizesPromptAndHistory(t *testing.T) {
	history := []domain.Message{
		msg(domain.RoleUser, "<b>bold</b> move"),
	}
	built := Build(history, "a <i>styled</i> prompt", Profile{}, Options{})
	if built.Messages[0].Content != "bold move" {
		t.Errorf("history = %q", built.Messages[0].Content)
	}
	if built.Messages[1].Content != "a styled prompt" {
		t.Errorf("prompt = %q", built.Messages[1].Content)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"<b>tags</b> stripped", "tags stripped"},
		{"<script>alert(1)</script>safe", "safe"},
		{"a &amp; b", "a & b"},
		{"1 < 2", "1 < 2"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
