package models

import "time"

// Trip is a row of trips.
type Trip struct {
	ID          string     `json:"id,omitempty"`
	CreatorID   string     `json:"creator_id"`
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	Description string     `json:"description,omitempty"`
	StartDate   string     `json:"start_date,omitempty"`
	EndDate     string     `json:"end_date,omitempty"`
	Budget      float64    `json:"budget,omitempty"`
	MaxMembers  int        `json:"max_members,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
