package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  hello  ", "hello"},
		{"strips-angle-brackets", "<script>alert(1)</script>", "scriptalert(1)/script"},
		{"empty", "   ", ""},
		{"plain", "what does this passage mean?", "what does this passage mean?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeCapsLength(t *testing.T) {
	long := strings.Repeat("a", MaxQuestionLength+500)
	if got := Sanitize(long); len(got) != MaxQuestionLength {
		t.Fatalf("len = %d, want %d", len(got), MaxQuestionLength)
	}
}

func TestSanitizeCapsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("主", MaxQuestionLength+200)
	got := Sanitize(long)
	if !utf8.ValidString(got) {
		t.Fatal("truncation produced invalid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n != MaxQuestionLength {
		t.Fatalf("rune count = %d, want %d", n, MaxQuestionLength)
	}
}

func TestAnswerPromptEmbedsQuestionAndContext(t *testing.T) {
	p := Answer("what is grace?", "note one\n\nhit one")
	if !strings.Contains(p, "Question: what is grace?") {
		t.Fatalf("question missing: %q", p)
	}
	if !strings.Contains(p, "note one\n\nhit one") {
		t.Fatalf("context missing: %q", p)
	}
}

func TestStudyPromptNamesPassageAndFields(t *testing.T) {
	p := Study("Psalm 23")
	if !strings.Contains(p, "Psalm 23") {
		t.Fatalf("passage missing: %q", p)
	}
	for _, field := range []string{"scripture", "reference", "observation", "application", "prayer"} {
		if !strings.Contains(p, field) {
			t.Fatalf("field %q missing from prompt: %q", field, p)
		}
	}
}
