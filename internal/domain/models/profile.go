package models

import "time"

// UserProfile is a row of user_profiles; ID equals the auth principal id.
type UserProfile struct {
	ID          string     `json:"id,omitempty" yaml:"id"`
	Username    string     `json:"username" yaml:"username"`
	FullName    string     `json:"full_name,omitempty" yaml:"full_name"`
	AvatarURL   string     `json:"avatar_url,omitempty" yaml:"avatar_url"`
	Bio         string     `json:"bio,omitempty" yaml:"bio"`
	Gender      string     `json:"gender,omitempty" yaml:"gender"`
	Age         int        `json:"age,omitempty" yaml:"age"`
	City        string     `json:"city,omitempty" yaml:"city"`
	Interests   []string   `json:"interests,omitempty" yaml:"interests"`
	TravelStyle string     `json:"travel_style,omitempty" yaml:"travel_style"`
	CreatedAt   *time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"-"`
}
