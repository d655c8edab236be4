package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow edge operations. Ensure
// and Remove are idempotent: reaching an already-reached state is success.
type FollowRepository interface {
	Ensure(ctx context.Context, userID, authorID uint) error
	Remove(ctx context.Context, userID, authorID uint) error
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Ensure creates the (user, author) edge if it does not exist. The insert is
// conflict-tolerant so concurrent identical requests cannot produce duplicate
// rows; the unique pair index is the arbiter.
func (r *followRepository) Ensure(ctx context.Context, userID, authorID uint) error {
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Create(&follow).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Remove deletes the edge if present. Deleting a non-existent edge is a no-op.
func (r *followRepository) Remove(ctx context.Context, userID, authorID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// CountFollowing counts the users userID follows.
func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CountFollowers counts the users following authorID.
func (r *followRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
