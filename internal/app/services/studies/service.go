// Package studies generates and serves SOAP study artifacts.
package studies

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/berea-labs/study_layer/internal/app/domain/study"
	"github.com/berea-labs/study_layer/internal/app/generation"
	"github.com/berea-labs/study_layer/internal/app/services/passages"
	"github.com/berea-labs/study_layer/internal/app/services/prompt"
	"github.com/berea-labs/study_layer/internal/app/storage"
	"github.com/berea-labs/study_layer/internal/logging"
)

// PassageRecommender picks a passage when the caller supplies none.
type PassageRecommender interface {
	Recommend(ctx context.Context, userID string) (string, error)
}

// Service runs the study pipeline: select passage, build prompt, invoke the
// model, enrich and persist the artifact.
type Service struct {
	store    storage.StudyStore
	selector PassageRecommender
	gen      *generation.Client
	log      *logging.Logger
	now      func() time.Time
}

// New creates a study service.
func New(store storage.StudyStore, selector PassageRecommender, gen *generation.Client, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{store: store, selector: selector, gen: gen, log: log, now: time.Now}
}

// Generate produces and persists a new study. An explicit passage always
// wins; the reference field is accepted as an alternate way to name one.
// Each call yields a fresh artifact; re-running the same passage creates a
// new study, never an update.
func (s *Service) Generate(ctx context.Context, passage, reference, userID string) (study.Study, error) {
	selected := passages.NormalizeReference(passage)
	if selected == "" {
		selected = passages.NormalizeReference(reference)
	}
	if selected == "" {
		var err error
		selected, err = s.selector.Recommend(ctx, userID)
		if err != nil {
			return study.Study{}, err
		}
	}

	fields, err := s.gen.Study(ctx, prompt.Study(selected))
	if err != nil {
		return study.Study{}, err
	}

	now := s.now().UTC()
	st := study.Study{
		ID:          uuid.NewString(),
		Scripture:   fields.Scripture,
		Reference:   fields.Reference,
		Observation: fields.Observation,
		Application: fields.Application,
		Prayer:      fields.Prayer,
		CreatedAt:   now,
		UserID:      userID,
		ExpiresAt:   now.Add(study.RetentionPeriod).Unix(),
	}
	if st.Reference == "" {
		st.Reference = selected
	}

	if err := s.store.SaveStudy(ctx, st); err != nil {
		return study.Study{}, err
	}
	s.log.Infof("study %s generated for passage %q", st.ID, selected)
	return st, nil
}

// Get retrieves a study by id.
func (s *Service) Get(ctx context.Context, id string) (study.Study, error) {
	return s.store.GetStudy(ctx, id)
}

// ListByUser returns a user's studies, most recent first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]study.Study, error) {
	return s.store.ListStudiesByUser(ctx, userID, limit)
}
