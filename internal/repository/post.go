package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. All listings
// are newest-publication-first.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDAndAuthor(ctx context.Context, id uint, username string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error

	CountAll(ctx context.Context) (int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error)
	CountFollowed(ctx context.Context, viewerID uint) (int64, error)
	ListFollowed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Group").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetByIDAndAuthor resolves a post by the compound (id, author username)
// lookup. An id alone is never sufficient: a mismatched username is the same
// as an unknown post.
func (r *postRepository) GetByIDAndAuthor(ctx context.Context, id uint, username string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Group").
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.id = ? AND users.username = ?", id, username).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Update persists an edit. Only the mutable columns are written; pub_date and
// author_id stay whatever creation set them to.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).
		Model(post).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feedQuery(ctx).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("group_id = ?", groupID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feedQuery(ctx).
		Where("group_id = ?", groupID).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feedQuery(ctx).
		Where("author_id = ?", authorID).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountFollowed(ctx context.Context, viewerID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id IN (?)", r.followedAuthors(viewerID)).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) ListFollowed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feedQuery(ctx).
		Where("author_id IN (?)", r.followedAuthors(viewerID)).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// feedQuery is the shared base for all post listings.
func (r *postRepository) feedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Group").
		Order("pub_date DESC, id DESC")
}

// followedAuthors is the subquery of author ids in the viewer's follow set.
func (r *postRepository) followedAuthors(viewerID uint) *gorm.DB {
	return r.db.
		Model(&models.Follow{}).
		Select("author_id").
		Where("user_id = ?", viewerID)
}
