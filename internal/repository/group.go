package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines persistence operations for groups.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a new GroupRepository implementation.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewFieldValidationError("slug", "Group with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

// Delete removes a group. Posts that referenced it keep existing; the schema
// nulls their group reference.
func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Group{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
