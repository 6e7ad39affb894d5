package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/showrunner/notification-api/internal/model"
	"github.com/showrunner/notification-api/internal/repository"
)

// Service is the cached front of the external user directory. Identity
// lookups are cached with a short TTL; unread counts never pass through
// here and stay live.
type Service struct {
	repo  repository.UserRepository
	cache *gocache.Cache
}

func NewService(repo repository.UserRepository, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := "user:" + id.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.User), nil
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	s.cache.SetDefault(key, user)
	return user, nil
}

func (s *Service) ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]*model.User, error) {
	key := "project-members:" + projectID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.User), nil
	}

	members, err := s.repo.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}

	s.cache.SetDefault(key, members)
	return members, nil
}
