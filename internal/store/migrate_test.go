package store_test

import (
	"context"
	"testing"

	"github.com/Clark-Hu/horror-movies-api/internal/store"
	"github.com/Clark-Hu/horror-movies-api/internal/testdb"
)

func TestMigrateIsIdempotent(t *testing.T) {
	pool := testdb.New(t, "horror_migrate_test")
	ctx := context.Background()

	applied, err := store.Migrate(ctx, pool)
	if err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("second Migrate applied %v, want nothing", applied)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 4 {
		t.Fatalf("schema_migrations rows = %d, want 4", count)
	}

	for _, table := range []string{"directors", "actors", "movies", "castings"} {
		if _, err := pool.Exec(ctx, "SELECT 1 FROM "+table+" LIMIT 1"); err != nil {
			t.Fatalf("table %s not created: %v", table, err)
		}
	}
}
