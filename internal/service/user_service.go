package service

import (
	"context"
	"log/slog"
	"strings"

	"aura/internal/cache"
	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/validation"

	"github.com/redis/go-redis/v9"
)

type UserService struct {
	store repository.Store
	rdb   *redis.Client
}

// SyncUserInput carries the identity claims of a verified session.
type SyncUserInput struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

type UpdateProfileInput struct {
	UserID          string  `json:"-" validate:"required"`
	FirstName       *string `json:"firstName" validate:"omitempty,max=255"`
	LastName        *string `json:"lastName" validate:"omitempty,max=255"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,max=1024"`
	DisplayName     *string `json:"displayName" validate:"omitempty,max=255"`
	Bio             *string `json:"bio" validate:"omitempty,max=500"`
	Location        *string `json:"location" validate:"omitempty,max=255"`
	TreeType        *string `json:"treeType" validate:"omitempty,min=2,max=50"`
}

func NewUserService(store repository.Store, rdb *redis.Client) *UserService {
	return &UserService{store: store, rdb: rdb}
}

// SyncUser makes sure the session's user exists and returns it. Identity
// fields are refreshed from the claims at most once per cache.UserSyncTTL;
// without Redis every call upserts.
func (s *UserService) SyncUser(ctx context.Context, in SyncUserInput) (*models.User, error) {
	if in.ID == "" {
		return nil, models.NewUnauthorizedError("Session has no subject")
	}

	if s.rdb != nil {
		fresh, err := s.rdb.SetNX(ctx, cache.UserSyncKey(in.ID), 1, cache.UserSyncTTL).Result()
		if err != nil {
			middleware.Logger.WarnContext(ctx, "user sync gate unavailable", slog.String("error", err.Error()))
		} else if !fresh {
			user, err := s.GetUser(ctx, in.ID)
			if err == nil {
				return user, nil
			}
			if !models.IsCode(err, models.CodeNotFound) {
				return nil, err
			}
		}
	}

	user := &models.User{
		ID:              in.ID,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		ProfileImageURL: in.ProfileImageURL,
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		user.Email = &email
	}
	if err := s.store.Users().Upsert(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, s.rdb, in.ID)
	return s.store.Users().GetByID(ctx, in.ID)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, s.rdb, cache.UserKey(id), &user, cache.UserTTL, func() error {
		found, err := s.store.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.store.Users().UpdateProfile(ctx, in.UserID, repository.ProfileUpdate{
		FirstName:       trimmed(in.FirstName),
		LastName:        trimmed(in.LastName),
		ProfileImageURL: trimmed(in.ProfileImageURL),
		DisplayName:     trimmed(in.DisplayName),
		Bio:             trimmed(in.Bio),
		Location:        trimmed(in.Location),
		TreeType:        trimmed(in.TreeType),
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, s.rdb, in.UserID)
	return user, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
