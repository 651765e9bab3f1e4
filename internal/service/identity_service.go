package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devrush/internal/cache"
	apperrors "devrush/internal/errors"
	"devrush/internal/model"
	"devrush/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// IdentityService holds registered user records. Users are never deleted.
type IdentityService interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, user *model.User) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	EnsureAdmin(ctx context.Context, email, name string) (*model.User, error)
}

type identityService struct {
	store repository.Store
	cache *cache.Client
	now   func() time.Time
	log   *zap.Logger
}

// NewIdentityService builds an IdentityService with repository and cache.
func NewIdentityService(store repository.Store, cache *cache.Client, opts Options) IdentityService {
	opts = opts.withDefaults()
	return &identityService{
		store: store,
		cache: cache,
		now:   opts.Now,
		log:   opts.Logger.Named("identity"),
	}
}

func (s *identityService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// FindByEmail returns nil, nil when no user has the exact email.
func (s *identityService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// Insert registers user, assigning an id and creation time when unset.
func (s *identityService) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Users().FindByEmail(ctx, user.Email)
		if err == nil {
			return apperrors.ErrDuplicateEmail
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check user existence: %w", err)
		}

		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = s.now()
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.ErrDuplicateEmail
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.Bool("admin", user.IsAdmin))
	return user, nil
}

// ListAll returns users in registration order.
func (s *identityService) ListAll(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser reads through the cache. Returns nil, nil for unknown ids.
func (s *identityService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// EnsureAdmin returns the administrator record for email, creating it on first start.
func (s *identityService) EnsureAdmin(ctx context.Context, email, name string) (*model.User, error) {
	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsAdmin {
			return nil, fmt.Errorf("administrator email %q belongs to a participant", email)
		}
		return existing, nil
	}

	admin, err := s.Insert(ctx, &model.User{
		Email:    email,
		FullName: name,
		IsAdmin:  true,
	})
	if errors.Is(err, apperrors.ErrDuplicateEmail) {
		// Another instance seeded it first.
		return s.FindByEmail(ctx, email)
	}
	return admin, err
}
