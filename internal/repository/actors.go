package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/paging"
)

var actorColumns = []string{
	"id",
	"first_name",
	"last_name",
	"date_of_birth",
	"created_at",
	"updated_at",
}

// ActorsRepository provides persistence helpers for actor entities.
type ActorsRepository struct {
	pool *pgxpool.Pool
	crud crud[domain.Actor]
}

// ActorListFilters encapsulates filtering, pagination and eager loading.
type ActorListFilters struct {
	FirstName     string
	Page          int
	PageSize      int
	IncludeMovies bool
}

func newActorsRepository(pool *pgxpool.Pool) *ActorsRepository {
	return &ActorsRepository{
		pool: pool,
		crud: crud[domain.Actor]{
			pool:    pool,
			table:   "actors",
			columns: actorColumns,
			writes:  []string{"first_name", "last_name", "date_of_birth"},
			orderBy: "last_name, id",
			values: func(a domain.Actor) []any {
				return []any{a.FirstName, a.LastName, a.DateOfBirth}
			},
			scan: scanActor,
		},
	}
}

// List returns one page of actors ordered by last name. IncludeMovies loads
// each actor's castings together with the cast movie.
func (r *ActorsRepository) List(ctx context.Context, filters ActorListFilters) (paging.List[domain.Actor], error) {
	var conds []condition
	if filters.FirstName != "" {
		conds = append(conds, condition{column: "first_name", value: filters.FirstName})
	}

	result, err := r.crud.list(ctx, conds, filters.Page, filters.PageSize)
	if err != nil {
		return paging.List[domain.Actor]{}, fmt.Errorf("list actors: %w", err)
	}
	if filters.IncludeMovies && len(result.Items) > 0 {
		if err := r.attachCastings(ctx, result.Items); err != nil {
			return paging.List[domain.Actor]{}, err
		}
	}
	return result, nil
}

// GetByID fetches an actor, optionally with castings and movies.
func (r *ActorsRepository) GetByID(ctx context.Context, id int64, includeMovies bool) (domain.Actor, error) {
	actor, err := r.crud.getByID(ctx, id)
	if err != nil {
		return domain.Actor{}, err
	}
	if includeMovies {
		items := []domain.Actor{actor}
		if err := r.attachCastings(ctx, items); err != nil {
			return domain.Actor{}, err
		}
		actor = items[0]
	}
	return actor, nil
}

// Add inserts an actor and returns it with its assigned id.
func (r *ActorsRepository) Add(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	return r.crud.add(ctx, actor)
}

// Update overwrites the stored fields of actor.ID.
func (r *ActorsRepository) Update(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	return r.crud.update(ctx, actor.ID, actor)
}

// Delete removes an actor and their castings.
func (r *ActorsRepository) Delete(ctx context.Context, id int64) error {
	return r.crud.delete(ctx, id)
}

func (r *ActorsRepository) attachCastings(ctx context.Context, actors []domain.Actor) error {
	ids := make([]int64, len(actors))
	for i, a := range actors {
		ids[i] = a.ID
	}

	query := fmt.Sprintf(`
        SELECT %s, %s
        FROM castings c
        JOIN movies m ON m.id = c.movie_id
        WHERE c.actor_id = ANY($1)
        ORDER BY m.title, m.id
    `, columnList("c", castingColumns), columnList("m", movieColumns))

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load actor castings: %w", err)
	}
	defer rows.Close()

	byActor := make(map[int64][]domain.Casting, len(actors))
	for rows.Next() {
		var (
			c domain.Casting
			m domain.Movie
		)
		err := rows.Scan(
			&c.ActorID, &c.MovieID, &c.Role, &c.CreatedAt, &c.UpdatedAt,
			&m.ID, &m.Title, &m.ReleaseYear, &m.Subgenre, &m.RuntimeMinutes, &m.DirectorID, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return err
		}
		c.Movie = &m
		byActor[c.ActorID] = append(byActor[c.ActorID], c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range actors {
		actors[i].Castings = byActor[actors[i].ID]
		if actors[i].Castings == nil {
			actors[i].Castings = []domain.Casting{}
		}
	}
	return nil
}

func scanActor(row pgx.Row) (domain.Actor, error) {
	var a domain.Actor
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.DateOfBirth,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Actor{}, err
	}
	return a, nil
}
