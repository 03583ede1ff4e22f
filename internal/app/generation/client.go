// Package generation invokes the generative model and classifies its output.
// Transport failures and malformed output are distinct error classes so
// operators can tell "model unreachable" from "model answered in an
// unexpected shape".
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/berea-labs/study_layer/internal/app/domain/study"
	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/logging"
)

// Params are the decoding parameters for one invocation. A zero TopP leaves
// the provider default in place.
type Params struct {
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Fixed decoding parameters per pipeline.
var (
	AnswerParams = Params{MaxTokens: 1000, Temperature: 0.7, TopP: 0.9}
	StudyParams  = Params{MaxTokens: 2000, Temperature: 0.7}
)

// Invoker sends a prompt to the model and returns its raw completion text.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, p Params) (string, error)
}

// Client runs prompts through an Invoker with a per-call deadline.
type Client struct {
	invoker Invoker
	timeout time.Duration
	log     *logging.Logger
}

// NewClient creates a generation client. A zero timeout defaults to 30s.
func NewClient(invoker Invoker, timeout time.Duration, log *logging.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Client{invoker: invoker, timeout: timeout, log: log}
}

// Answer returns the model's raw completion for a free-form prompt. The
// completion is the final answer; no validation is applied.
func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	raw, err := c.invoke(ctx, prompt, AnswerParams)
	if err != nil {
		return "", err
	}
	return raw, nil
}

// Study invokes the model and parses its completion into the structured
// study shape. Parse failures surface as MalformedOutput; no repair or retry
// is attempted.
func (c *Client) Study(ctx context.Context, prompt string) (study.Fields, error) {
	raw, err := c.invoke(ctx, prompt, StudyParams)
	if err != nil {
		return study.Fields{}, err
	}
	return ParseStudyFields(raw)
}

func (c *Client) invoke(ctx context.Context, prompt string, p Params) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.invoker.Invoke(ctx, prompt, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", svcerrors.Timeout("model invocation", err)
		}
		return "", svcerrors.ProviderUnavailable("model", err)
	}
	return raw, nil
}

var studyFieldNames = []string{"scripture", "reference", "observation", "application", "prayer"}

// ParseStudyFields parses a model completion into study fields. The model is
// told to emit a JSON object with exactly these fields; anything else fails.
// Markdown code fences around the object are tolerated since models add them
// despite instructions.
func ParseStudyFields(raw string) (study.Fields, error) {
	trimmed := stripCodeFence(raw)

	if !gjson.Valid(trimmed) {
		return study.Fields{}, svcerrors.MalformedOutput(fmt.Errorf("completion is not valid JSON"))
	}
	for _, name := range studyFieldNames {
		field := gjson.Get(trimmed, name)
		if !field.Exists() || field.Type != gjson.String || field.String() == "" {
			return study.Fields{}, svcerrors.MalformedOutput(fmt.Errorf("completion is missing field %q", name))
		}
	}

	var fields study.Fields
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return study.Fields{}, svcerrors.MalformedOutput(err)
	}
	return fields, nil
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
