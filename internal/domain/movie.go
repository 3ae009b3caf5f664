package domain

import "time"

// Movie represents the canonical movie entity. Every movie belongs to exactly one director.
type Movie struct {
	ID             int64
	Title          string
	ReleaseYear    int
	Subgenre       string
	RuntimeMinutes *int
	DirectorID     int64
	Castings       []Casting
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
