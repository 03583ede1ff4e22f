// Package note defines the journal note read model. Notes are owned and
// mutated by the journaling collaborator; this service only reads them.
package note

import "time"

// Note is one journal entry attached to a study.
type Note struct {
	UserID    string    `json:"user_id"`
	StudyID   string    `json:"study_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
