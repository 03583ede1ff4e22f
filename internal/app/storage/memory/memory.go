// Package memory provides a thread-safe in-memory implementation of the
// storage interfaces. It is intended for tests and single-node development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/berea-labs/study_layer/internal/app/domain/note"
	"github.com/berea-labs/study_layer/internal/app/domain/study"
	"github.com/berea-labs/study_layer/internal/app/storage"
)

// Store implements StudyStore, NoteStore and CounterStore in memory.
type Store struct {
	mu       sync.RWMutex
	studies  map[string]study.Study
	notes    []note.Note
	counters map[string]int
}

var _ storage.StudyStore = (*Store)(nil)
var _ storage.NoteStore = (*Store)(nil)
var _ storage.CounterStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		studies:  make(map[string]study.Study),
		counters: make(map[string]int),
	}
}

// --- StudyStore -------------------------------------------------------------

func (s *Store) SaveStudy(_ context.Context, st study.Study) error {
	if st.ID == "" {
		return fmt.Errorf("study id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.studies[st.ID] = st
	return nil
}

func (s *Store) GetStudy(_ context.Context, id string) (study.Study, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.studies[id]
	if !ok {
		return study.Study{}, fmt.Errorf("study %s: %w", id, storage.ErrNotFound)
	}
	return st, nil
}

func (s *Store) ListStudiesByUser(_ context.Context, userID string, limit int) ([]study.Study, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]study.Study, 0)
	for _, st := range s.studies {
		if st.UserID == userID {
			result = append(result, st)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Unix()
	purged := 0
	for id, st := range s.studies {
		if st.ExpiresAt > 0 && st.ExpiresAt <= cutoff {
			delete(s.studies, id)
			purged++
		}
	}
	return purged, nil
}

// --- NoteStore --------------------------------------------------------------

func (s *Store) ListNotesByUser(_ context.Context, userID, studyID string, limit int) ([]note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]note.Note, 0)
	for _, n := range s.notes {
		if n.UserID != userID {
			continue
		}
		if studyID != "" && n.StudyID != studyID {
			continue
		}
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// PutNote seeds a journal note. The live system never writes notes here; the
// journal collaborator owns them. Tests and fixtures use this.
func (s *Store) PutNote(n note.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, n)
}

// --- CounterStore -----------------------------------------------------------

func (s *Store) GetCount(_ context.Context, installID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[installID], nil
}

func (s *Store) IncrementCount(_ context.Context, installID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[installID]++
	return s.counters[installID], nil
}
