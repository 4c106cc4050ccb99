package models

import "time"

// Attraction is a row of the read-mostly attractions catalog.
type Attraction struct {
	ID          string     `json:"id,omitempty" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	City        string     `json:"city" yaml:"city"`
	Category    string     `json:"category,omitempty" yaml:"category"`
	Description string     `json:"description,omitempty" yaml:"description"`
	ImageURL    string     `json:"image_url,omitempty" yaml:"image_url"`
	Rating      float64    `json:"rating,omitempty" yaml:"rating"`
	Price       float64    `json:"price,omitempty" yaml:"price"`
	CreatedAt   *time.Time `json:"created_at,omitempty" yaml:"-"`
}
