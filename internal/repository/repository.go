package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/horror-movies-api/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrInvalidReference indicates a write pointed at a row that does not exist,
	// such as a movie whose director is unknown.
	ErrInvalidReference = errors.New("repository: invalid reference")
)

// foreign_key_violation
const pgForeignKeyViolation = "23503"

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Directors *DirectorsRepository
	Actors    *ActorsRepository
	Movies    *MoviesRepository
	Castings  *CastingsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Directors: newDirectorsRepository(pool),
		Actors:    newActorsRepository(pool),
		Movies:    newMoviesRepository(pool),
		Castings:  &CastingsRepository{pool: pool},
	}
}

// translateError maps driver errors onto the package's sentinel errors.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.Detail)
	}
	return err
}
