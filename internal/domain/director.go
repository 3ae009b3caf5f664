package domain

import "time"

// Director represents a film director. Movies is populated only when the
// caller asks for related movies to be loaded.
type Director struct {
	ID           int64
	FirstName    string
	LastName     string
	BirthCountry string
	DateOfBirth  *time.Time
	Movies       []Movie
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
