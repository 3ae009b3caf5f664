package domain

import "time"

// Casting links an actor to a movie with the role they played.
// Actor and Movie are filled in depending on which side was loaded.
type Casting struct {
	ActorID   int64
	MovieID   int64
	Role      string
	Actor     *Actor
	Movie     *Movie
	CreatedAt time.Time
	UpdatedAt time.Time
}
