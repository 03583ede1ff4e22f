package app

import (
	"time"

	"github.com/berea-labs/study_layer/internal/app/generation"
	"github.com/berea-labs/study_layer/internal/app/search"
	"github.com/berea-labs/study_layer/internal/app/services/entitlements"
	"github.com/berea-labs/study_layer/internal/app/services/mentor"
	"github.com/berea-labs/study_layer/internal/app/services/passages"
	"github.com/berea-labs/study_layer/internal/app/services/studies"
	"github.com/berea-labs/study_layer/internal/app/storage"
	"github.com/berea-labs/study_layer/internal/app/storage/memory"
	"github.com/berea-labs/study_layer/internal/logging"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Studies  storage.StudyStore
	Notes    storage.NoteStore
	Counters storage.CounterStore
}

// Providers encapsulates external dependencies: the model invoker, the
// commentary search index and the subscription provider.
type Providers struct {
	Invoker      generation.Invoker
	SearchIndex  search.Index
	Purchases    entitlements.PurchaseProvider
	ModelTimeout time.Duration
}

// Application ties domain services together.
type Application struct {
	log *logging.Logger

	Entitlements *entitlements.Service
	Mentor       *mentor.Service
	Studies      *studies.Service
	Passages     *passages.Selector
}

// New builds a fully initialised application with the provided stores and
// providers.
func New(stores Stores, providers Providers, log *logging.Logger) *Application {
	if log == nil {
		log = logging.NewNop()
	}

	mem := memory.New()
	if stores.Studies == nil {
		stores.Studies = mem
	}
	if stores.Notes == nil {
		stores.Notes = mem
	}
	if stores.Counters == nil {
		stores.Counters = mem
	}

	gen := generation.NewClient(providers.Invoker, providers.ModelTimeout, log.Named("generation"))

	entService := entitlements.New(stores.Counters, providers.Purchases, log.Named("entitlements"))
	selector := passages.New(stores.Studies, log.Named("passages"))
	studyService := studies.New(stores.Studies, selector, gen, log.Named("studies"))
	aggregator := mentor.NewAggregator(stores.Notes, providers.SearchIndex, log.Named("mentor"))
	mentorService := mentor.New(aggregator, gen, log.Named("mentor"))

	return &Application{
		log:          log,
		Entitlements: entService,
		Mentor:       mentorService,
		Studies:      studyService,
		Passages:     selector,
	}
}
