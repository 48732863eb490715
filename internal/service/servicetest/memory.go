// Package servicetest provides in-memory stores for service and handler tests.
package servicetest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"casting-api/internal/domain"
	"casting-api/internal/repo"
)

// ErrStore is returned by a store whose Fail was called
var ErrStore = errors.New("store unavailable")

// ActorStore keeps actors in a map
type ActorStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Actor
	fail   bool
}

func NewActorStore() *ActorStore {
	return &ActorStore{rows: map[int64]domain.Actor{}}
}

// Fail makes every later call on an existing row return ErrStore
func (s *ActorStore) Fail() {
	s.mu.Lock()
	s.fail = true
	s.mu.Unlock()
}

// Len returns the number of stored actors
func (s *ActorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *ActorStore) List(ctx context.Context) ([]domain.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, ErrStore
	}
	var out []domain.Actor
	for _, a := range s.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ActorStore) Get(ctx context.Context, id int64) (*domain.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, repo.ErrActorNotFound
	}
	return &a, nil
}

func (s *ActorStore) Create(ctx context.Context, actor *domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return ErrStore
	}
	s.nextID++
	actor.ID = s.nextID
	s.rows[actor.ID] = *actor
	return nil
}

func (s *ActorStore) Update(ctx context.Context, id int64, patch domain.ActorPatch) (*domain.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, repo.ErrActorNotFound
	}
	if s.fail {
		return nil, ErrStore
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Age != nil {
		a.Age = *patch.Age
	}
	if patch.Gender != nil {
		a.Gender = patch.Gender
	}
	s.rows[id] = a
	return &a, nil
}

func (s *ActorStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repo.ErrActorNotFound
	}
	if s.fail {
		return ErrStore
	}
	delete(s.rows, id)
	return nil
}

// MovieStore keeps movies in a map
type MovieStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Movie
	fail   bool
}

func NewMovieStore() *MovieStore {
	return &MovieStore{rows: map[int64]domain.Movie{}}
}

// Fail makes every later call on an existing row return ErrStore
func (s *MovieStore) Fail() {
	s.mu.Lock()
	s.fail = true
	s.mu.Unlock()
}

// Len returns the number of stored movies
func (s *MovieStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MovieStore) List(ctx context.Context) ([]domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, ErrStore
	}
	var out []domain.Movie
	for _, m := range s.rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MovieStore) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return nil, repo.ErrMovieNotFound
	}
	return &m, nil
}

func (s *MovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return ErrStore
	}
	s.nextID++
	movie.ID = s.nextID
	s.rows[movie.ID] = *movie
	return nil
}

func (s *MovieStore) Update(ctx context.Context, id int64, patch domain.MoviePatch) (*domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[id]
	if !ok {
		return nil, repo.ErrMovieNotFound
	}
	if s.fail {
		return nil, ErrStore
	}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.ReleaseDate != nil {
		m.ReleaseDate = *patch.ReleaseDate
	}
	s.rows[id] = m
	return &m, nil
}

func (s *MovieStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repo.ErrMovieNotFound
	}
	if s.fail {
		return ErrStore
	}
	delete(s.rows, id)
	return nil
}

// AuditRecorder keeps audit entries in order. A non-nil Err fails every write.
type AuditRecorder struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	Err     error
}

func (a *AuditRecorder) LogAction(ctx context.Context, entry domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.entries = append(a.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries
func (a *AuditRecorder) Entries() []domain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.AuditEntry(nil), a.entries...)
}
