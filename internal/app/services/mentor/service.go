// Package mentor answers free-form questions grounded in the user's journal
// and the content index.
package mentor

import (
	"context"

	"github.com/berea-labs/study_layer/internal/app/generation"
	"github.com/berea-labs/study_layer/internal/app/services/prompt"
	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/logging"
)

// Service runs the answer pipeline: gather context, build the prompt, invoke
// the model.
type Service struct {
	agg *Aggregator
	gen *generation.Client
	log *logging.Logger
}

// New creates a mentor service.
func New(agg *Aggregator, gen *generation.Client, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{agg: agg, gen: gen, log: log}
}

// Answer responds to a question. The optional extraContext is caller-supplied
// grounding prepended ahead of the gathered context; studyID narrows the
// notes retrieval to one study.
func (s *Service) Answer(ctx context.Context, question, userID, studyID, extraContext string) (string, error) {
	question = prompt.Sanitize(question)
	if question == "" {
		return "", svcerrors.InvalidInput("question is required")
	}

	gathered, err := s.agg.Gather(ctx, question, userID, studyID)
	if err != nil {
		return "", err
	}
	if extraContext != "" {
		if gathered != "" {
			gathered = extraContext + "\n\n" + gathered
		} else {
			gathered = extraContext
		}
	}

	answer, err := s.gen.Answer(ctx, prompt.Answer(question, gathered))
	if err != nil {
		return "", err
	}
	s.log.Infof("answered question for user %q (context %d bytes)", userID, len(gathered))
	return answer, nil
}
