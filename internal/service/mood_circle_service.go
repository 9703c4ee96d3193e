package service

import (
	"context"
	"strings"

	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/validation"
)

// CircleListLimit is the default page size of the circle listing.
const CircleListLimit = 20

type MoodCircleService struct {
	store repository.Store
}

type CreateCircleInput struct {
	UserID      string      `json:"-" validate:"required"`
	Name        string      `json:"name" validate:"required,max=100"`
	Description string      `json:"description" validate:"max=1000"`
	Mood        models.Mood `json:"mood" validate:"required,mood"`
}

func NewMoodCircleService(store repository.Store) *MoodCircleService {
	return &MoodCircleService{store: store}
}

// CreateCircle creates the circle with its creator as the first member.
func (s *MoodCircleService) CreateCircle(ctx context.Context, in CreateCircleInput) (*models.MoodCircle, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	circle := &models.MoodCircle{
		Name:        in.Name,
		Description: in.Description,
		Mood:        in.Mood,
		CreatedBy:   in.UserID,
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Circles().Create(ctx, circle); err != nil {
			return err
		}
		if err := tx.Circles().AddMember(ctx, circle.ID, in.UserID); err != nil {
			return err
		}
		count, err := tx.Circles().RecountMembers(ctx, circle.ID)
		circle.MemberCount = count
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return circle, nil
}

func (s *MoodCircleService) ListCircles(ctx context.Context, mood string, limit int) ([]models.MoodCircle, error) {
	if limit <= 0 {
		limit = CircleListLimit
	}
	var filter models.Mood
	if mood != "" {
		parsed, ok := models.ParseMood(mood)
		if !ok {
			return nil, models.NewValidationError("Invalid mood")
		}
		filter = parsed
	}
	circles, err := s.store.Circles().List(ctx, filter, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

// JoinCircle adds the user to the circle. Joining again is a no-op.
func (s *MoodCircleService) JoinCircle(ctx context.Context, userID, circleID string) (*models.MoodCircle, error) {
	return s.changeMembership(ctx, circleID, func(tx repository.Store) error {
		return tx.Circles().AddMember(ctx, circleID, userID)
	})
}

func (s *MoodCircleService) LeaveCircle(ctx context.Context, userID, circleID string) (*models.MoodCircle, error) {
	return s.changeMembership(ctx, circleID, func(tx repository.Store) error {
		return tx.Circles().RemoveMember(ctx, circleID, userID)
	})
}

func (s *MoodCircleService) changeMembership(ctx context.Context, circleID string, change func(tx repository.Store) error) (*models.MoodCircle, error) {
	var circle *models.MoodCircle
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		found, err := tx.Circles().GetByID(ctx, circleID)
		if err != nil {
			return err
		}
		if err := change(tx); err != nil {
			return err
		}
		count, err := tx.Circles().RecountMembers(ctx, circleID)
		if err != nil {
			return err
		}
		found.MemberCount = count
		circle = found
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Mood circle", circleID)
	}
	return circle, nil
}
