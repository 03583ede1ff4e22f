// Package passages recommends a passage when the caller does not name one.
package passages

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/berea-labs/study_layer/internal/app/domain/study"
	"github.com/berea-labs/study_layer/internal/logging"
)

// DefaultRotation is the fixed set of canonical passages the selector draws
// from when no history-based recommendation applies.
var DefaultRotation = []string{
	"John 3:16-21",
	"Psalm 23",
	"Philippians 4:4-9",
	"Romans 8:28-39",
	"Matthew 5:1-12",
}

const historyLookback = 10

// HistoryProvider lists a user's recent studies, most recent first.
type HistoryProvider interface {
	ListStudiesByUser(ctx context.Context, userID string, limit int) ([]study.Study, error)
}

// Selector picks a passage. An explicit caller-supplied passage always wins;
// the selector is only consulted when none was given.
type Selector struct {
	history HistoryProvider
	pick    func(n int) int
	log     *logging.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithRandSource replaces the random source. Tests use a seeded source for
// deterministic picks.
func WithRandSource(src rand.Source) Option {
	return func(s *Selector) {
		rng := rand.New(src)
		s.pick = rng.Intn
	}
}

// New creates a selector.
func New(history HistoryProvider, log *logging.Logger, opts ...Option) *Selector {
	if log == nil {
		log = logging.NewNop()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Selector{history: history, pick: rng.Intn, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend returns a passage reference for the user. History is consulted
// when an identity is present, but the recommendation currently falls
// through to a uniform pick from the rotation.
// TODO: weight the rotation away from passages in the user's recent history.
func (s *Selector) Recommend(ctx context.Context, userID string) (string, error) {
	if userID != "" && s.history != nil {
		if _, err := s.history.ListStudiesByUser(ctx, userID, historyLookback); err != nil {
			return "", err
		}
	}
	return DefaultRotation[s.pick(len(DefaultRotation))], nil
}

// NormalizeReference normalizes a caller-supplied passage reference.
func NormalizeReference(reference string) string {
	return strings.TrimSpace(reference)
}
