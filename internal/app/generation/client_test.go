package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	svcerrors "github.com/berea-labs/study_layer/internal/errors"
)

type fakeInvoker struct {
	completion string
	err        error
	lastPrompt string
	lastParams Params
}

func (f *fakeInvoker) Invoke(_ context.Context, prompt string, p Params) (string, error) {
	f.lastPrompt = prompt
	f.lastParams = p
	return f.completion, f.err
}

const validStudyJSON = `{
	"scripture": "The Lord is my shepherd; I shall not want.",
	"reference": "Psalm 23",
	"observation": "God provides.",
	"application": "Trust him daily.",
	"prayer": "Lord, lead me."
}`

func TestAnswerUsesAnswerParams(t *testing.T) {
	inv := &fakeInvoker{completion: "an answer"}
	c := NewClient(inv, 0, nil)

	got, err := c.Answer(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got != "an answer" {
		t.Fatalf("unexpected answer %q", got)
	}
	if inv.lastParams != AnswerParams {
		t.Fatalf("unexpected params %+v", inv.lastParams)
	}
}

func TestStudyUsesStudyParams(t *testing.T) {
	inv := &fakeInvoker{completion: validStudyJSON}
	c := NewClient(inv, 0, nil)

	fields, err := c.Study(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("study: %v", err)
	}
	if fields.Reference != "Psalm 23" {
		t.Fatalf("unexpected reference %q", fields.Reference)
	}
	if inv.lastParams != StudyParams {
		t.Fatalf("unexpected params %+v", inv.lastParams)
	}
}

func TestInvokeClassifiesTimeout(t *testing.T) {
	inv := &fakeInvoker{err: context.DeadlineExceeded}
	c := NewClient(inv, time.Second, nil)

	_, err := c.Answer(context.Background(), "prompt")
	if !svcerrors.HasCode(err, svcerrors.CodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestInvokeClassifiesProviderFailure(t *testing.T) {
	inv := &fakeInvoker{err: errors.New("connection refused")}
	c := NewClient(inv, time.Second, nil)

	_, err := c.Answer(context.Background(), "prompt")
	if !svcerrors.HasCode(err, svcerrors.CodeProviderUnavailable) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestParseStudyFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "plain-json", raw: validStudyJSON},
		{name: "fenced", raw: "```json\n" + validStudyJSON + "\n```"},
		{name: "fenced-no-language", raw: "```\n" + validStudyJSON + "\n```"},
		{name: "prose", raw: "Here is your study: scripture, observation...", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "missing-field", raw: `{"scripture":"x","reference":"y","observation":"z","application":"w"}`, wantErr: true},
		{name: "empty-field", raw: `{"scripture":"x","reference":"","observation":"z","application":"w","prayer":"p"}`, wantErr: true},
		{name: "wrong-type", raw: `{"scripture":1,"reference":"y","observation":"z","application":"w","prayer":"p"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ParseStudyFields(tt.raw)
			if tt.wantErr {
				if !svcerrors.HasCode(err, svcerrors.CodeMalformedOutput) {
					t.Fatalf("expected malformed output error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if fields.Scripture == "" || fields.Prayer == "" {
				t.Fatalf("incomplete fields: %+v", fields)
			}
		})
	}
}
