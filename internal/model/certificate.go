package model

import "time"

// Certificate is a gift certificate in the catalog.
type Certificate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	DurationDays int       `json:"duration_days"`
	Tags         []Tag     `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Tag labels certificates; names are unique.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
