package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
)

var castingColumns = []string{
	"actor_id",
	"movie_id",
	"role",
	"created_at",
	"updated_at",
}

// CastingsRepository maintains the actor/movie bridge rows.
type CastingsRepository struct {
	pool *pgxpool.Pool
}

// CastingUpsertParams captures the payload required to upsert a casting.
type CastingUpsertParams struct {
	MovieID int64
	ActorID int64
	Role    string
}

// Upsert inserts or updates a casting and indicates whether it was newly
// created. Unknown actor or movie ids yield ErrInvalidReference.
func (r *CastingsRepository) Upsert(ctx context.Context, params CastingUpsertParams) (domain.Casting, bool, error) {
	const query = `
        INSERT INTO castings (actor_id, movie_id, role)
        VALUES ($1,$2,$3)
        ON CONFLICT (actor_id, movie_id)
        DO UPDATE SET role = EXCLUDED.role, updated_at = now()
        RETURNING actor_id, movie_id, role, created_at, updated_at, (xmax = 0) AS inserted
    `

	var casting domain.Casting
	var inserted bool
	err := r.pool.QueryRow(ctx, query, params.ActorID, params.MovieID, params.Role).Scan(
		&casting.ActorID,
		&casting.MovieID,
		&casting.Role,
		&casting.CreatedAt,
		&casting.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return domain.Casting{}, false, translateError(err)
	}
	return casting, inserted, nil
}

// Delete removes a casting.
func (r *CastingsRepository) Delete(ctx context.Context, movieID, actorID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM castings WHERE movie_id = $1 AND actor_id = $2`, movieID, actorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
