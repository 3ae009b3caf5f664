package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/paging"
)

var movieColumns = []string{
	"id",
	"title",
	"release_year",
	"subgenre",
	"runtime_minutes",
	"director_id",
	"created_at",
	"updated_at",
}

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
	crud crud[domain.Movie]
}

// MovieListFilters encapsulates filtering, pagination and eager loading.
// Zero values mean "no filter".
type MovieListFilters struct {
	Subgenre      string
	DirectorID    int64
	Page          int
	PageSize      int
	IncludeActors bool
}

func newMoviesRepository(pool *pgxpool.Pool) *MoviesRepository {
	return &MoviesRepository{
		pool: pool,
		crud: crud[domain.Movie]{
			pool:    pool,
			table:   "movies",
			columns: movieColumns,
			writes:  []string{"title", "release_year", "subgenre", "runtime_minutes", "director_id"},
			orderBy: "title, id",
			values: func(m domain.Movie) []any {
				return []any{m.Title, m.ReleaseYear, m.Subgenre, m.RuntimeMinutes, m.DirectorID}
			},
			scan: scanMovie,
		},
	}
}

// List returns one page of movies ordered by title.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (paging.List[domain.Movie], error) {
	var conds []condition
	if filters.Subgenre != "" {
		conds = append(conds, condition{column: "subgenre", value: filters.Subgenre})
	}
	if filters.DirectorID != 0 {
		conds = append(conds, condition{column: "director_id", value: filters.DirectorID})
	}

	result, err := r.crud.list(ctx, conds, filters.Page, filters.PageSize)
	if err != nil {
		return paging.List[domain.Movie]{}, fmt.Errorf("list movies: %w", err)
	}
	if filters.IncludeActors && len(result.Items) > 0 {
		if err := r.attachCastings(ctx, result.Items); err != nil {
			return paging.List[domain.Movie]{}, err
		}
	}
	return result, nil
}

// GetByID fetches a movie, optionally with its cast.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64, includeActors bool) (domain.Movie, error) {
	movie, err := r.crud.getByID(ctx, id)
	if err != nil {
		return domain.Movie{}, err
	}
	if includeActors {
		items := []domain.Movie{movie}
		if err := r.attachCastings(ctx, items); err != nil {
			return domain.Movie{}, err
		}
		movie = items[0]
	}
	return movie, nil
}

// Add inserts a movie. An unknown DirectorID yields ErrInvalidReference.
func (r *MoviesRepository) Add(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	return r.crud.add(ctx, movie)
}

// Update overwrites the stored fields of movie.ID.
func (r *MoviesRepository) Update(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	return r.crud.update(ctx, movie.ID, movie)
}

// Delete removes a movie and its castings.
func (r *MoviesRepository) Delete(ctx context.Context, id int64) error {
	return r.crud.delete(ctx, id)
}

func (r *MoviesRepository) attachCastings(ctx context.Context, movies []domain.Movie) error {
	ids := make([]int64, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}

	query := fmt.Sprintf(`
        SELECT %s, %s
        FROM castings c
        JOIN actors a ON a.id = c.actor_id
        WHERE c.movie_id = ANY($1)
        ORDER BY a.last_name, a.id
    `, columnList("c", castingColumns), columnList("a", actorColumns))

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load movie castings: %w", err)
	}
	defer rows.Close()

	byMovie := make(map[int64][]domain.Casting, len(movies))
	for rows.Next() {
		var (
			c domain.Casting
			a domain.Actor
		)
		err := rows.Scan(
			&c.ActorID, &c.MovieID, &c.Role, &c.CreatedAt, &c.UpdatedAt,
			&a.ID, &a.FirstName, &a.LastName, &a.DateOfBirth, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return err
		}
		c.Actor = &a
		byMovie[c.MovieID] = append(byMovie[c.MovieID], c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range movies {
		movies[i].Castings = byMovie[movies[i].ID]
		if movies[i].Castings == nil {
			movies[i].Castings = []domain.Casting{}
		}
	}
	return nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var m domain.Movie
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.ReleaseYear,
		&m.Subgenre,
		&m.RuntimeMinutes,
		&m.DirectorID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return m, nil
}
