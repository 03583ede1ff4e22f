package mentor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/berea-labs/study_layer/internal/app/domain/note"
	"github.com/berea-labs/study_layer/internal/app/storage/memory"
)

type fakeIndex struct {
	hits       []string
	err        error
	lastQuery  string
	lastFields []string
	lastLimit  int
	calls      int
}

func (f *fakeIndex) Search(_ context.Context, query string, fields []string, limit int) ([]string, error) {
	f.calls++
	f.lastQuery = query
	f.lastFields = fields
	f.lastLimit = limit
	return f.hits, f.err
}

func seedNotes(store *memory.Store, userID string, contents ...string) {
	base := time.Now()
	for i, c := range contents {
		store.PutNote(note.Note{
			UserID:    userID,
			Content:   c,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestGatherJoinsNotesThenHits(t *testing.T) {
	store := memory.New()
	seedNotes(store, "user-1", "older note", "newest note")
	index := &fakeIndex{hits: []string{"hit one", "hit two"}}

	agg := NewAggregator(store, index, nil)
	got, err := agg.Gather(context.Background(), "what is grace?", "user-1", "")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	want := "newest note\n\nolder note\n\nhit one\n\nhit two"
	if got != want {
		t.Fatalf("context = %q, want %q", got, want)
	}
}

func TestGatherSkipsNotesWithoutIdentity(t *testing.T) {
	store := memory.New()
	seedNotes(store, "user-1", "a private note")
	index := &fakeIndex{hits: []string{"hit one"}}

	agg := NewAggregator(store, index, nil)
	got, err := agg.Gather(context.Background(), "question", "", "")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got != "hit one" {
		t.Fatalf("context = %q, want search hits only", got)
	}
}

func TestGatherSearchParameters(t *testing.T) {
	index := &fakeIndex{}
	agg := NewAggregator(memory.New(), index, nil)

	if _, err := agg.Gather(context.Background(), "what is grace?", "", ""); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if index.lastQuery != "what is grace?" {
		t.Fatalf("query = %q", index.lastQuery)
	}
	if len(index.lastFields) != 2 || index.lastFields[0] != "content" || index.lastFields[1] != "commentary" {
		t.Fatalf("fields = %v", index.lastFields)
	}
	if index.lastLimit != maxSearchHits {
		t.Fatalf("limit = %d, want %d", index.lastLimit, maxSearchHits)
	}
}

func TestGatherPropagatesSearchFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("index down")}
	agg := NewAggregator(memory.New(), index, nil)

	if _, err := agg.Gather(context.Background(), "question", "", ""); err == nil {
		t.Fatal("expected search failure to propagate")
	}
}

func TestGatherWithoutIndexUsesNotesOnly(t *testing.T) {
	store := memory.New()
	seedNotes(store, "user-1", "just a note")

	agg := NewAggregator(store, nil, nil)
	got, err := agg.Gather(context.Background(), "question", "user-1", "")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got != "just a note" {
		t.Fatalf("context = %q", got)
	}
}
