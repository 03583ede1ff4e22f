// Package study defines the persisted SOAP study artifact.
package study

import "time"

// RetentionPeriod is how long a study is kept before the storage layer may
// purge it.
const RetentionPeriod = 30 * 24 * time.Hour

// Study is a generated SOAP (Scripture, Observation, Application, Prayer)
// study. The id and creation time are assigned locally, never by the model.
// Studies are immutable once saved; regenerating the same passage produces a
// new artifact.
type Study struct {
	ID          string    `json:"id"`
	Scripture   string    `json:"scripture"`
	Reference   string    `json:"reference"`
	Observation string    `json:"observation"`
	Application string    `json:"application"`
	Prayer      string    `json:"prayer"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id,omitempty"`
	// ExpiresAt is the purge horizon in epoch seconds, interpreted by the
	// storage layer.
	ExpiresAt int64 `json:"ttl,omitempty"`
}

// Fields is the structured shape the model must emit for a study.
type Fields struct {
	Scripture   string `json:"scripture"`
	Reference   string `json:"reference"`
	Observation string `json:"observation"`
	Application string `json:"application"`
	Prayer      string `json:"prayer"`
}
