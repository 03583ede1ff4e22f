package passages

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/berea-labs/study_layer/internal/app/domain/study"
)

type fakeHistory struct {
	studies []study.Study
	err     error
	calls   int
}

func (f *fakeHistory) ListStudiesByUser(_ context.Context, _ string, _ int) ([]study.Study, error) {
	f.calls++
	return f.studies, f.err
}

func TestRecommendPicksFromRotation(t *testing.T) {
	s := New(nil, nil, WithRandSource(rand.NewSource(1)))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		passage, err := s.Recommend(context.Background(), "")
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		seen[passage] = true
	}

	for _, want := range DefaultRotation {
		if !seen[want] {
			t.Fatalf("passage %q never recommended in 50 picks", want)
		}
	}
	if len(seen) != len(DefaultRotation) {
		t.Fatalf("recommended %d distinct passages, rotation has %d", len(seen), len(DefaultRotation))
	}
}

func TestRecommendConsultsHistoryWhenIdentified(t *testing.T) {
	history := &fakeHistory{}
	s := New(history, nil, WithRandSource(rand.NewSource(1)))

	if _, err := s.Recommend(context.Background(), "user-1"); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if history.calls != 1 {
		t.Fatalf("expected one history lookup, got %d", history.calls)
	}
}

func TestRecommendSkipsHistoryForAnonymous(t *testing.T) {
	history := &fakeHistory{}
	s := New(history, nil, WithRandSource(rand.NewSource(1)))

	if _, err := s.Recommend(context.Background(), ""); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if history.calls != 0 {
		t.Fatalf("expected no history lookup, got %d", history.calls)
	}
}

func TestRecommendPropagatesHistoryError(t *testing.T) {
	history := &fakeHistory{err: errors.New("storage down")}
	s := New(history, nil, WithRandSource(rand.NewSource(1)))

	if _, err := s.Recommend(context.Background(), "user-1"); err == nil {
		t.Fatal("expected history error to propagate")
	}
}

func TestNormalizeReference(t *testing.T) {
	if got := NormalizeReference("  Psalm 23  "); got != "Psalm 23" {
		t.Fatalf("unexpected normalization %q", got)
	}
	if got := NormalizeReference("   "); got != "" {
		t.Fatalf("expected blank input to normalize empty, got %q", got)
	}
}
