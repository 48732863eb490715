package service

import (
	"context"
	"fmt"

	"casting-api/internal/domain"
	"casting-api/internal/observability/logger"
	"casting-api/internal/repo"

	"go.uber.org/zap"
)

var ErrActorNotFound = repo.ErrActorNotFound

// ActorStore persists actors
type ActorStore interface {
	List(ctx context.Context) ([]domain.Actor, error)
	Get(ctx context.Context, id int64) (*domain.Actor, error)
	Create(ctx context.Context, actor *domain.Actor) error
	Update(ctx context.Context, id int64, patch domain.ActorPatch) (*domain.Actor, error)
	Delete(ctx context.Context, id int64) error
}

type ActorService struct {
	actors ActorStore
	audit  AuditLogger
	log    *logger.Logger
}

func NewActorService(actors ActorStore, audit AuditLogger, log *logger.Logger) *ActorService {
	return &ActorService{
		actors: actors,
		audit:  audit,
		log:    log,
	}
}

// ListActors returns every actor ordered by id, never nil
func (s *ActorService) ListActors(ctx context.Context) ([]domain.Actor, error) {
	actors, err := s.actors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	if actors == nil {
		actors = []domain.Actor{}
	}
	return actors, nil
}

// GetActor returns ErrActorNotFound for an unknown id
func (s *ActorService) GetActor(ctx context.Context, id int64) (*domain.Actor, error) {
	actor, err := s.actors.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return actor, nil
}

// CreateActor validates req, stores the actor and returns its id
func (s *ActorService) CreateActor(ctx context.Context, subject string, req *domain.CreateActorRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	actor := req.Actor()
	if err := s.actors.Create(ctx, &actor); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.log.Info(ctx, "actor created",
		logger.Module("actor"),
		logger.Action("create"),
		zap.Int64("actor_id", actor.ID),
	)

	recordAudit(ctx, s.audit, s.log, domain.AuditEntry{
		Subject:      subject,
		Action:       domain.AuditActionCreate,
		ResourceType: domain.ResourceActor,
		ResourceID:   actor.ID,
	})

	return actor.ID, nil
}

// UpdateActor applies the members present in req
func (s *ActorService) UpdateActor(ctx context.Context, subject string, id int64, req *domain.UpdateActorRequest) (*domain.Actor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	patch := req.Patch()
	actor, err := s.actors.Update(ctx, id, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("update actor: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.log.Info(ctx, "actor updated",
		logger.Module("actor"),
		logger.Action("update"),
		zap.Int64("actor_id", id),
		zap.Strings("fields", patch.Fields()),
	)

	recordAudit(ctx, s.audit, s.log, domain.AuditEntry{
		Subject:      subject,
		Action:       domain.AuditActionUpdate,
		ResourceType: domain.ResourceActor,
		ResourceID:   id,
		Metadata:     map[string]interface{}{"fields": patch.Fields()},
	})

	return actor, nil
}

// DeleteActor removes the actor with id
func (s *ActorService) DeleteActor(ctx context.Context, subject string, id int64) error {
	if err := s.actors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete actor: %w", err)
	}

	s.log.Info(ctx, "actor deleted",
		logger.Module("actor"),
		logger.Action("delete"),
		zap.Int64("actor_id", id),
	)

	recordAudit(ctx, s.audit, s.log, domain.AuditEntry{
		Subject:      subject,
		Action:       domain.AuditActionDelete,
		ResourceType: domain.ResourceActor,
		ResourceID:   id,
	})

	return nil
}
