package mentor

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/berea-labs/study_layer/internal/app/search"
	"github.com/berea-labs/study_layer/internal/app/storage"
	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/logging"
)

const (
	maxNotes      = 5
	maxSearchHits = 3
)

var searchFields = []string{"content", "commentary"}

// Aggregator assembles the retrieval context for a question: the user's
// recent journal notes first, then the top search hits, joined with blank
// lines. The two retrievals are independent and run concurrently; the join
// order is fixed regardless of completion order.
type Aggregator struct {
	notes storage.NoteStore
	index search.Index
	log   *logging.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(notes storage.NoteStore, index search.Index, log *logging.Logger) *Aggregator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Aggregator{notes: notes, index: index, log: log}
}

// Gather returns the joined context string. Without a user identity the
// notes retrieval is skipped entirely; a search failure propagates.
func (a *Aggregator) Gather(ctx context.Context, question, userID, studyID string) (string, error) {
	var noteTexts, hits []string

	g, gctx := errgroup.WithContext(ctx)

	if userID != "" && a.notes != nil {
		g.Go(func() error {
			notes, err := a.notes.ListNotesByUser(gctx, userID, studyID, maxNotes)
			if err != nil {
				return svcerrors.ProviderUnavailable("notes", err)
			}
			for _, n := range notes {
				noteTexts = append(noteTexts, n.Content)
			}
			return nil
		})
	}

	if a.index != nil {
		g.Go(func() error {
			results, err := a.index.Search(gctx, question, searchFields, maxSearchHits)
			if err != nil {
				return err
			}
			hits = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	fragments := make([]string, 0, len(noteTexts)+len(hits))
	fragments = append(fragments, noteTexts...)
	fragments = append(fragments, hits...)
	return strings.Join(fragments, "\n\n"), nil
}
