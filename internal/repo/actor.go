package repo

import (
	"context"
	"errors"
	"fmt"

	"casting-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrActorNotFound = errors.New("actor not found")

// ActorRepository handles database operations for actors
type ActorRepository struct {
	pool *pgxpool.Pool
}

func NewActorRepository(pool *pgxpool.Pool) *ActorRepository {
	return &ActorRepository{pool: pool}
}

// List returns all actors ordered by id
func (r *ActorRepository) List(ctx context.Context) ([]domain.Actor, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, age, gender FROM actors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}

	actors, err := pgx.CollectRows(rows, scanActor)
	if err != nil {
		return nil, fmt.Errorf("scan actors: %w", err)
	}
	return actors, nil
}

// Get returns ErrActorNotFound when no row has id
func (r *ActorRepository) Get(ctx context.Context, id int64) (*domain.Actor, error) {
	row, err := r.pool.Query(ctx, `SELECT id, name, age, gender FROM actors WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query actor: %w", err)
	}

	actor, err := pgx.CollectOneRow(row, scanActor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("scan actor: %w", err)
	}
	return &actor, nil
}

// Create inserts actor and sets its ID
func (r *ActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO actors (name, age, gender) VALUES ($1, $2, $3) RETURNING id`,
		actor.Name, actor.Age, actor.Gender,
	).Scan(&actor.ID)
	if err != nil {
		return fmt.Errorf("insert actor: %w", err)
	}
	return nil
}

// Update applies patch and returns the stored row
func (r *ActorRepository) Update(ctx context.Context, id int64, patch domain.ActorPatch) (*domain.Actor, error) {
	query := `
		UPDATE actors SET
			name       = COALESCE($2, name),
			age        = COALESCE($3, age),
			gender     = COALESCE($4, gender),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, age, gender
	`

	rows, err := r.pool.Query(ctx, query, id, patch.Name, patch.Age, patch.Gender)
	if err != nil {
		return nil, fmt.Errorf("update actor: %w", err)
	}

	actor, err := pgx.CollectOneRow(rows, scanActor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("update actor: %w", err)
	}
	return &actor, nil
}

// Delete removes the actor with id
func (r *ActorRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM actors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete actor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrActorNotFound
	}
	return nil
}

func scanActor(row pgx.CollectableRow) (domain.Actor, error) {
	var a domain.Actor
	err := row.Scan(&a.ID, &a.Name, &a.Age, &a.Gender)
	return a, err
}
