package service

import (
	"context"

	"inkwell/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByIDAndAuthor(ctx context.Context, id uint, username string) (*models.Post, error) {
	args := m.Called(ctx, id, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, groupID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, authorID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) CountFollowed(ctx context.Context, viewerID uint) (int64, error) {
	args := m.Called(ctx, viewerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) ListFollowed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, viewerID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGroupRepository is a mock of the GroupRepository interface
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *models.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupRepository) List(ctx context.Context) ([]models.Group, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockGroupRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Ensure(ctx context.Context, userID, authorID uint) error {
	args := m.Called(ctx, userID, authorID)
	return args.Error(0)
}

func (m *MockFollowRepository) Remove(ctx context.Context, userID, authorID uint) error {
	args := m.Called(ctx, userID, authorID)
	return args.Error(0)
}

func (m *MockFollowRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).(int64), args.Error(1)
}
