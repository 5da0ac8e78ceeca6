package profile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// ListLimit caps the number of profiles returned by List.
const ListLimit = 100

// Store persists profiles.
type Store interface {
	Save(ctx context.Context, p Profile) error
	Get(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context, limit int) ([]Profile, error)
}

// SummaryInvalidator drops cached summaries derived from a profile.
type SummaryInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// Service implements profile create, fetch, list and update.
type Service struct {
	store Store
	cache SummaryInvalidator
	now   func() time.Time
	newID func() string
}

// NewService creates a Service. cache may be nil.
func NewService(store Store, cache SummaryInvalidator) *Service {
	return &Service{
		store: store,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Create validates in, derives the calorie target and persists a new profile.
func (s *Service) Create(ctx context.Context, in Input) (Profile, error) {
	if err := in.Validate(); err != nil {
		return Profile{}, err
	}

	p := Profile{ID: s.newID(), CreatedAt: s.now()}
	p.apply(in)

	if err := s.store.Save(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

// Get returns the profile with the given id or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if p == nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *p, nil
}

// List returns the first ListLimit profiles.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.store.List(ctx, ListLimit)
}

// Update replaces the attributes of an existing profile and recomputes its
// calorie target. Identity and creation time are preserved.
func (s *Service) Update(ctx context.Context, id string, in Input) (Profile, error) {
	if err := in.Validate(); err != nil {
		return Profile{}, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p.apply(in)

	if err := s.store.Save(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("failed to update profile: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, id); err != nil {
			log.Printf("Warning: failed to invalidate cached summaries for %s: %v", id, err)
		}
	}
	return p, nil
}
