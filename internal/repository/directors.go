package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/paging"
)

var directorColumns = []string{
	"id",
	"first_name",
	"last_name",
	"birth_country",
	"date_of_birth",
	"created_at",
	"updated_at",
}

// DirectorsRepository provides persistence helpers for director entities.
type DirectorsRepository struct {
	pool *pgxpool.Pool
	crud crud[domain.Director]
}

// DirectorListFilters encapsulates filtering, pagination and eager loading.
type DirectorListFilters struct {
	BirthCountry  string
	Page          int
	PageSize      int
	IncludeMovies bool
}

func newDirectorsRepository(pool *pgxpool.Pool) *DirectorsRepository {
	return &DirectorsRepository{
		pool: pool,
		crud: crud[domain.Director]{
			pool:    pool,
			table:   "directors",
			columns: directorColumns,
			writes:  []string{"first_name", "last_name", "birth_country", "date_of_birth"},
			orderBy: "last_name, id",
			values: func(d domain.Director) []any {
				return []any{d.FirstName, d.LastName, d.BirthCountry, d.DateOfBirth}
			},
			scan: scanDirector,
		},
	}
}

// List returns one page of directors ordered by last name. An empty
// BirthCountry means no filtering.
func (r *DirectorsRepository) List(ctx context.Context, filters DirectorListFilters) (paging.List[domain.Director], error) {
	var conds []condition
	if filters.BirthCountry != "" {
		conds = append(conds, condition{column: "birth_country", value: filters.BirthCountry})
	}

	result, err := r.crud.list(ctx, conds, filters.Page, filters.PageSize)
	if err != nil {
		return paging.List[domain.Director]{}, fmt.Errorf("list directors: %w", err)
	}
	if filters.IncludeMovies && len(result.Items) > 0 {
		if err := r.attachMovies(ctx, result.Items); err != nil {
			return paging.List[domain.Director]{}, err
		}
	}
	return result, nil
}

// GetByID fetches a director, optionally with the movies they directed.
func (r *DirectorsRepository) GetByID(ctx context.Context, id int64, includeMovies bool) (domain.Director, error) {
	director, err := r.crud.getByID(ctx, id)
	if err != nil {
		return domain.Director{}, err
	}
	if includeMovies {
		items := []domain.Director{director}
		if err := r.attachMovies(ctx, items); err != nil {
			return domain.Director{}, err
		}
		director = items[0]
	}
	return director, nil
}

// Add inserts a director and returns it with its assigned id.
func (r *DirectorsRepository) Add(ctx context.Context, director domain.Director) (domain.Director, error) {
	return r.crud.add(ctx, director)
}

// Update overwrites the stored fields of director.ID.
func (r *DirectorsRepository) Update(ctx context.Context, director domain.Director) (domain.Director, error) {
	return r.crud.update(ctx, director.ID, director)
}

// Delete removes a director together with their movies.
func (r *DirectorsRepository) Delete(ctx context.Context, id int64) error {
	return r.crud.delete(ctx, id)
}

func (r *DirectorsRepository) attachMovies(ctx context.Context, directors []domain.Director) error {
	ids := make([]int64, len(directors))
	for i, d := range directors {
		ids[i] = d.ID
	}

	query := fmt.Sprintf(`SELECT %s FROM movies WHERE director_id = ANY($1) ORDER BY title, id`, columnList("", movieColumns))
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load director movies: %w", err)
	}
	defer rows.Close()

	byDirector := make(map[int64][]domain.Movie, len(directors))
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return err
		}
		byDirector[movie.DirectorID] = append(byDirector[movie.DirectorID], movie)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range directors {
		directors[i].Movies = byDirector[directors[i].ID]
		if directors[i].Movies == nil {
			directors[i].Movies = []domain.Movie{}
		}
	}
	return nil
}

func scanDirector(row pgx.Row) (domain.Director, error) {
	var d domain.Director
	err := row.Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.BirthCountry,
		&d.DateOfBirth,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Director{}, err
	}
	return d, nil
}
