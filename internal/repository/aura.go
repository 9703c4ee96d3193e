package repository

import (
	"context"

	"aura/internal/models"

	"gorm.io/gorm"
)

// PointsDrift describes a user whose cached aura_points disagree with the ledger.
type PointsDrift struct {
	UserID       string
	AuraPoints   int
	LedgerPoints int
}

// AuraRepository defines the aura ledger and the cached totals derived from it.
type AuraRepository interface {
	Append(ctx context.Context, activity *models.AuraActivity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AuraActivity, error)
	LedgerTotal(ctx context.Context, userID string) (int, error)
	Drifted(ctx context.Context, limit int) ([]PointsDrift, error)
	SetPoints(ctx context.Context, userID string, points int) error
}

type auraRepository struct {
	db *gorm.DB
}

// NewAuraRepository returns a new AuraRepository implementation.
func NewAuraRepository(db *gorm.DB) AuraRepository {
	return &auraRepository{db: db}
}

// Append writes one ledger row and bumps the user's cached total and tree
// level in the same statement sequence. Run it inside Store.Transaction so
// both land or neither does.
func (r *auraRepository) Append(ctx context.Context, activity *models.AuraActivity) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(activity).Error; err != nil {
		return err
	}

	result := db.Exec(
		`UPDATE users SET aura_points = aura_points + ?, tree_level = 1 + (aura_points + ?) / ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		activity.Points, activity.Points, models.PointsPerLevel, activity.UserID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", activity.UserID)
	}
	return nil
}

func (r *auraRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuraActivity, error) {
	var activities []models.AuraActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *auraRepository) LedgerTotal(ctx context.Context, userID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.AuraActivity{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return int(total), err
}

// Drifted lists users whose aura_points no longer equal the sum of their ledger.
func (r *auraRepository) Drifted(ctx context.Context, limit int) ([]PointsDrift, error) {
	var drift []PointsDrift
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id AS user_id, u.aura_points AS aura_points, COALESCE(SUM(a.points), 0) AS ledger_points
		FROM users u
		LEFT JOIN aura_activities a ON a.user_id = u.id
		GROUP BY u.id, u.aura_points
		HAVING u.aura_points <> COALESCE(SUM(a.points), 0)
		ORDER BY u.id
		LIMIT ?`, limit).
		Scan(&drift).Error
	return drift, err
}

// SetPoints overwrites the cached total and recomputes the tree level.
func (r *auraRepository) SetPoints(ctx context.Context, userID string, points int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"aura_points": points,
			"tree_level":  models.TreeLevel(points),
		}).Error
}
