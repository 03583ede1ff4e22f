// Package storage defines the persistence interfaces for studies, journal
// notes, and the per-install usage counter.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/berea-labs/study_layer/internal/app/domain/note"
	"github.com/berea-labs/study_layer/internal/app/domain/study"
)

// ErrNotFound is returned when a record does not exist. Implementations wrap
// it so callers can use errors.Is.
var ErrNotFound = errors.New("not found")

// StudyStore persists study artifacts. SaveStudy has upsert semantics keyed
// by the study id; there is no read-before-write and no concurrency check,
// which makes retries safe.
type StudyStore interface {
	SaveStudy(ctx context.Context, st study.Study) error
	GetStudy(ctx context.Context, id string) (study.Study, error)
	ListStudiesByUser(ctx context.Context, userID string, limit int) ([]study.Study, error)
	// PurgeExpired removes studies whose expiry horizon has passed and
	// returns how many were removed. Backends with native TTL support may
	// make this a no-op.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// NoteStore reads journal notes, most recent first. The journal collaborator
// owns writes.
type NoteStore interface {
	ListNotesByUser(ctx context.Context, userID, studyID string, limit int) ([]note.Note, error)
}

// CounterStore persists the per-install study counter. IncrementCount must be
// atomic: concurrent increments may not lose updates.
type CounterStore interface {
	GetCount(ctx context.Context, installID string) (int, error)
	IncrementCount(ctx context.Context, installID string) (int, error)
}
