package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"aura/internal/cache"
	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/repository"
	"aura/internal/validation"

	"github.com/redis/go-redis/v9"
)

const shareExcerptRunes = 140

type PostService struct {
	store         repository.Store
	rdb           *redis.Client
	broadcaster   MoodBroadcaster
	publicBaseURL string
}

type CreatePostInput struct {
	UserID      string      `json:"-" validate:"required"`
	Content     string      `json:"content" validate:"required,max=5000"`
	Mood        models.Mood `json:"mood" validate:"required,mood"`
	IsAnonymous bool        `json:"isAnonymous"`
	ImageURL    string      `json:"imageUrl" validate:"max=1024"`
	MusicURL    string      `json:"musicUrl" validate:"max=1024"`
	MusicTitle  string      `json:"musicTitle" validate:"max=255"`
	Location    string      `json:"location" validate:"max=255"`
	Latitude    *float64    `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64    `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

type ListPostsInput struct {
	Mood      string
	Location  string
	Anonymous bool
	Limit     int
	Offset    int
}

type UpdatePostInput struct {
	UserID  string `json:"-" validate:"required"`
	PostID  string `json:"-" validate:"required"`
	Content string `json:"content" validate:"required,max=5000"`
}

type DeletePostInput struct {
	UserID string
	PostID string
}

// ShareLink is the payload handed to the client's native share sheet.
type ShareLink struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	ShareURL string `json:"shareUrl"`
}

func NewPostService(store repository.Store, rdb *redis.Client, broadcaster MoodBroadcaster, publicBaseURL string) *PostService {
	return &PostService{
		store:         store,
		rdb:           rdb,
		broadcaster:   broadcaster,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// CreatePost stores the post, awards the author and counts the mood for the
// day when a location is given. All writes share one transaction.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &models.Post{
		UserID:      in.UserID,
		Content:     in.Content,
		Mood:        in.Mood,
		IsAnonymous: in.IsAnonymous,
		ImageURL:    in.ImageURL,
		MusicURL:    in.MusicURL,
		MusicTitle:  in.MusicTitle,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		if err := award(ctx, tx, in.UserID, models.ActivitySharedExperience, models.PointsSharedExperience, "Shared a new experience"); err != nil {
			return err
		}
		if post.Location != "" {
			return tx.MoodStats().Record(ctx, post.Mood, post.Location, now)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "User", in.UserID)
	}
	recordAward(ctx, s.rdb, in.UserID, models.ActivitySharedExperience, models.PointsSharedExperience)

	if post.Location != "" {
		if err := cache.InvalidateMoodStats(ctx, s.rdb, post.Location); err != nil {
			middleware.Logger.WarnContext(ctx, "invalidate mood stats failed", slog.String("error", err.Error()))
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastMoodUpdate(ctx, post.Mood, post.Location)
		}
	}

	created, err := s.store.Posts().GetByID(ctx, post.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "reload created post failed",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
		return post, nil
	}
	return created, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, asAppError(err, "Post", id)
	}
	redacted := post.Redacted()
	return &redacted, nil
}

// ListPosts serves the general feed, the mood and location feeds and the
// anonymous whisper feed. Only the whisper feed contains anonymous posts, and
// their authors are stripped.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.Post, error) {
	filter := repository.PostFilter{
		Location:      strings.TrimSpace(in.Location),
		AnonymousOnly: in.Anonymous,
		Limit:         clampLimit(in.Limit, defaultListLimit),
		Offset:        max(in.Offset, 0),
	}
	if in.Mood != "" {
		mood, ok := models.ParseMood(in.Mood)
		if !ok {
			return nil, models.NewValidationError("Invalid mood")
		}
		filter.Mood = mood
	}

	posts, err := s.store.Posts().List(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return redactAll(posts), nil
}

// ListUserPosts returns a user's posts. Anonymous ones are only included for
// the author.
func (s *PostService) ListUserPosts(ctx context.Context, userID, viewerID string, limit, offset int) ([]models.Post, error) {
	posts, err := s.store.Posts().List(ctx, repository.PostFilter{
		UserID:           userID,
		IncludeAnonymous: userID == viewerID,
		Limit:            clampLimit(limit, defaultListLimit),
		Offset:           max(offset, 0),
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if userID == viewerID {
		return posts, nil
	}
	return redactAll(posts), nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post, err := s.store.Posts().GetByID(ctx, in.PostID)
	if err != nil {
		return nil, asAppError(err, "Post", in.PostID)
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if err := s.store.Posts().UpdateContent(ctx, in.PostID, in.Content); err != nil {
		return nil, asAppError(err, "Post", in.PostID)
	}
	post.Content = in.Content
	post.UpdatedAt = time.Now().UTC()
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.store.Posts().GetByID(ctx, in.PostID)
	if err != nil {
		return asAppError(err, "Post", in.PostID)
	}
	if post.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.Posts().Delete(ctx, in.PostID)
	})
	return asAppError(err, "Post", in.PostID)
}

// SharePost builds the share sheet payload for a post.
func (s *PostService) SharePost(ctx context.Context, id string) (*ShareLink, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, asAppError(err, "Post", id)
	}
	return &ShareLink{
		Title:    post.Mood.Title() + " vibes on Aura",
		Text:     excerpt(post.Content, shareExcerptRunes),
		ShareURL: s.publicBaseURL + "/post/" + post.ID,
	}, nil
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func redactAll(posts []models.Post) []models.Post {
	for i := range posts {
		posts[i] = posts[i].Redacted()
	}
	return posts
}
