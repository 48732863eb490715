package repo_test

import (
	"context"
	"os"
	"testing"

	"casting-api/internal/database"
	"casting-api/internal/domain"
	"casting-api/internal/observability/logger"
	"casting-api/internal/repo"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to DATABASE_URL and applies migrations.
//
// Run with: DATABASE_URL=postgres://... go test -v ./internal/repo
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	require.NoError(t, database.RunMigrations(databaseURL))

	pool, err := database.NewPool(context.Background(), databaseURL, logger.NewNop())
	require.NoError(t, err, "failed to connect to database")
	t.Cleanup(pool.Close)

	return pool
}

func strPtr(s string) *string { return &s }

func TestActorRepository_Integration(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	actors := repo.NewActorRepository(pool)

	actor := &domain.Actor{Name: "Sigourney Weaver", Age: 71, Gender: strPtr("female")}
	require.NoError(t, actors.Create(ctx, actor))
	require.NotZero(t, actor.ID)
	t.Cleanup(func() { _ = actors.Delete(ctx, actor.ID) })

	got, err := actors.Get(ctx, actor.ID)
	require.NoError(t, err)
	assert.Equal(t, actor, got)

	age := 72
	updated, err := actors.Update(ctx, actor.ID, domain.ActorPatch{Age: &age})
	require.NoError(t, err)
	assert.Equal(t, 72, updated.Age)
	assert.Equal(t, "Sigourney Weaver", updated.Name, "untouched columns are kept")
	assert.Equal(t, "female", *updated.Gender)

	list, err := actors.List(ctx)
	require.NoError(t, err)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID, "ordered by id")
	}

	require.NoError(t, actors.Delete(ctx, actor.ID))
	assert.ErrorIs(t, actors.Delete(ctx, actor.ID), repo.ErrActorNotFound)

	_, err = actors.Get(ctx, actor.ID)
	assert.ErrorIs(t, err, repo.ErrActorNotFound)

	_, err = actors.Update(ctx, actor.ID, domain.ActorPatch{Age: &age})
	assert.ErrorIs(t, err, repo.ErrActorNotFound)
}

func TestActorRepository_RejectsOverlongName(t *testing.T) {
	pool := newTestPool(t)
	actors := repo.NewActorRepository(pool)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}

	err := actors.Create(context.Background(), &domain.Actor{Name: string(long), Age: 1})
	assert.Error(t, err)
}

func TestMovieRepository_Integration(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	movies := repo.NewMovieRepository(pool)

	date, err := domain.ParseDate("1979-05-25")
	require.NoError(t, err)

	movie := &domain.Movie{Title: "Alien", ReleaseDate: date}
	require.NoError(t, movies.Create(ctx, movie))
	t.Cleanup(func() { _ = movies.Delete(ctx, movie.ID) })

	got, err := movies.Get(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alien", got.Title)
	assert.Equal(t, "1979-05-25", got.ReleaseDate.String())

	title := "Alien: Director's Cut"
	updated, err := movies.Update(ctx, movie.ID, domain.MoviePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "1979-05-25", updated.ReleaseDate.String())

	require.NoError(t, movies.Delete(ctx, movie.ID))
	_, err = movies.Get(ctx, movie.ID)
	assert.ErrorIs(t, err, repo.ErrMovieNotFound)
}

func TestAuditRepo_Integration(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	audit := repo.NewAuditRepo(pool)

	subject := "auth0|audit-test"
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM audit_log WHERE subject = $1`, subject)
	})

	err := audit.LogAction(ctx, domain.AuditEntry{
		Subject:      subject,
		Action:       domain.AuditActionCreate,
		ResourceType: domain.ResourceActor,
		ResourceID:   42,
		Metadata:     map[string]interface{}{"fields": []string{"name"}},
		RequestID:    "req_test",
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE audit_log SET created_at = now() - interval '10 days' WHERE subject = $1`, subject)
	require.NoError(t, err)

	deleted, err := audit.DeleteOlderThan(ctx, 5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	var remaining int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM audit_log WHERE subject = $1`, subject).Scan(&remaining))
	assert.Zero(t, remaining)
}
