// Package postgres implements the storage interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/berea-labs/study_layer/internal/app/domain/note"
	"github.com/berea-labs/study_layer/internal/app/domain/study"
	"github.com/berea-labs/study_layer/internal/app/storage"
)

// Store implements StudyStore, NoteStore and CounterStore backed by
// PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.StudyStore = (*Store)(nil)
var _ storage.NoteStore = (*Store)(nil)
var _ storage.CounterStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS studies (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL DEFAULT '',
	scripture   TEXT NOT NULL,
	reference   TEXT NOT NULL,
	observation TEXT NOT NULL,
	application TEXT NOT NULL,
	prayer      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	expires_at  BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS studies_user_created_idx ON studies (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS journal_notes (
	user_id   TEXT NOT NULL,
	study_id  TEXT NOT NULL,
	content   TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, study_id, timestamp)
);

CREATE TABLE IF NOT EXISTS usage_counters (
	install_id TEXT PRIMARY KEY,
	count      INTEGER NOT NULL DEFAULT 0
);
`

// --- StudyStore -------------------------------------------------------------

func (s *Store) SaveStudy(ctx context.Context, st study.Study) error {
	if st.ID == "" {
		return fmt.Errorf("study id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO studies (id, user_id, scripture, reference, observation, application, prayer, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			scripture = EXCLUDED.scripture,
			reference = EXCLUDED.reference,
			observation = EXCLUDED.observation,
			application = EXCLUDED.application,
			prayer = EXCLUDED.prayer,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`, st.ID, st.UserID, st.Scripture, st.Reference, st.Observation, st.Application, st.Prayer, st.CreatedAt, st.ExpiresAt)
	return err
}

func (s *Store) GetStudy(ctx context.Context, id string) (study.Study, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, scripture, reference, observation, application, prayer, created_at, expires_at
		FROM studies
		WHERE id = $1
	`, id)

	var st study.Study
	err := row.Scan(&st.ID, &st.UserID, &st.Scripture, &st.Reference, &st.Observation, &st.Application, &st.Prayer, &st.CreatedAt, &st.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return study.Study{}, fmt.Errorf("study %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return study.Study{}, err
	}
	return st, nil
}

func (s *Store) ListStudiesByUser(ctx context.Context, userID string, limit int) ([]study.Study, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, scripture, reference, observation, application, prayer, created_at, expires_at
		FROM studies
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []study.Study
	for rows.Next() {
		var st study.Study
		if err := rows.Scan(&st.ID, &st.UserID, &st.Scripture, &st.Reference, &st.Observation, &st.Application, &st.Prayer, &st.CreatedAt, &st.ExpiresAt); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM studies WHERE expires_at > 0 AND expires_at <= $1
	`, now.Unix())
	if err != nil {
		return 0, err
	}
	purged, _ := result.RowsAffected()
	return int(purged), nil
}

// --- NoteStore --------------------------------------------------------------

func (s *Store) ListNotesByUser(ctx context.Context, userID, studyID string, limit int) ([]note.Note, error) {
	query := `
		SELECT user_id, study_id, content, timestamp
		FROM journal_notes
		WHERE user_id = $1
	`
	args := []any{userID}
	if studyID != "" {
		query += ` AND study_id = $2`
		args = append(args, studyID)
	}
	query += fmt.Sprintf(` ORDER BY timestamp DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []note.Note
	for rows.Next() {
		var n note.Note
		if err := rows.Scan(&n.UserID, &n.StudyID, &n.Content, &n.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// --- CounterStore -----------------------------------------------------------

func (s *Store) GetCount(ctx context.Context, installID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT count FROM usage_counters WHERE install_id = $1
	`, installID)

	var count int
	err := row.Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementCount is a single atomic upsert so concurrent increments for the
// same install cannot lose updates.
func (s *Store) IncrementCount(ctx context.Context, installID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO usage_counters (install_id, count)
		VALUES ($1, 1)
		ON CONFLICT (install_id) DO UPDATE SET count = usage_counters.count + 1
		RETURNING count
	`, installID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
