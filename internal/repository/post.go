package repository

import (
	"context"
	"time"

	"aura/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Anonymous posts are excluded unless
// AnonymousOnly or IncludeAnonymous is set.
type PostFilter struct {
	Mood             models.Mood
	Location         string
	UserID           string
	AnonymousOnly    bool
	IncludeAnonymous bool
	Limit            int
	Offset           int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("User").Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Preload("User")

	if filter.Mood != "" {
		q = q.Where("mood = ?", filter.Mood)
	}
	if filter.Location != "" {
		q = q.Where("location "+likeOperator(r.db)+" ?", "%"+filter.Location+"%")
	}
	switch {
	case filter.AnonymousOnly:
		q = q.Where("is_anonymous = ?", true)
	case !filter.IncludeAnonymous:
		q = q.Where("is_anonymous = ?", false)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var posts []models.Post
	err := q.Order("created_at DESC").Find(&posts).Error
	return posts, err
}

func (r *postRepository) UpdateContent(ctx context.Context, id, content string) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		Updates(map[string]interface{}{"content": content, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the post and its vibes. Callers wanting atomicity run it
// inside Store.Transaction.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", id).Delete(&models.Vibe{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// likeOperator returns the case-insensitive LIKE for the connected dialect.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}
