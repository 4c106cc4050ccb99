package models

import "time"

const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusRejected = "rejected"
)

// ValidMatchStatus reports whether s is one of the known match statuses.
func ValidMatchStatus(s string) bool {
	switch s {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusRejected:
		return true
	}
	return false
}

// Match pairs two travellers, optionally around a trip.
type Match struct {
	ID            string     `json:"id,omitempty"`
	UserID        string     `json:"user_id"`
	MatchedUserID string     `json:"matched_user_id"`
	TripID        string     `json:"trip_id,omitempty"`
	Score         float64    `json:"score,omitempty"`
	Status        string     `json:"status,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}
