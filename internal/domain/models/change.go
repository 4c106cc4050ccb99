package models

import "time"

// ChangeType is the kind of row change pushed to realtime listeners.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent describes one row change on a table.
type ChangeEvent struct {
	Type            ChangeType     `json:"eventType"`
	Schema          string         `json:"schema"`
	Table           string         `json:"table"`
	New             map[string]any `json:"new,omitempty"`
	Old             map[string]any `json:"old,omitempty"`
	CommitTimestamp time.Time      `json:"commit_timestamp"`
}

// Record returns the row the event is about: New, or Old for deletes.
func (e ChangeEvent) Record() map[string]any {
	if e.Type == ChangeDelete || e.New == nil {
		return e.Old
	}
	return e.New
}
