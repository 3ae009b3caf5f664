package domain

import "time"

// Actor represents a performer. Castings is populated only on request and
// each casting then carries its Movie.
type Actor struct {
	ID          int64
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Castings    []Casting
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
