package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/media"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newContentService(
	postRepo *MockPostRepository,
	groupRepo *MockGroupRepository,
	commentRepo *MockCommentRepository,
) *ContentService {
	return NewContentService(postRepo, groupRepo, new(MockUserRepository), commentRepo, media.NewStore("/tmp/inkwell-test-media"))
}

func TestCreatePostSetsPubDate(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newContentService(postRepo, new(MockGroupRepository), new(MockCommentRepository))

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return fixed })

	var created *models.Post
	postRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Post)
		created.ID = 7
	}).Return(nil)
	postRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.Post{ID: 7, Text: "hello"}, nil)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 3,
		Text:     "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
	assert.Equal(t, fixed, created.PubDate)
	assert.Equal(t, uint(3), created.AuthorID)
}

func TestCreatePostEmptyText(t *testing.T) {
	svc := newContentService(new(MockPostRepository), new(MockGroupRepository), new(MockCommentRepository))

	_, err := svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 1, Text: "   "})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	assert.Equal(t, "text", models.FieldOf(err))
}

func TestCreatePostUnknownGroup(t *testing.T) {
	groupRepo := new(MockGroupRepository)
	svc := newContentService(new(MockPostRepository), groupRepo, new(MockCommentRepository))

	groupRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("Group", 99))

	groupID := uint(99)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 1, Text: "hello", GroupID: &groupID,
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	assert.Equal(t, "group", models.FieldOf(err))
}

func TestEditPostOwnershipCheck(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newContentService(postRepo, new(MockGroupRepository), new(MockCommentRepository))

	postRepo.On("GetByIDAndAuthor", mock.Anything, uint(5), "author").
		Return(&models.Post{ID: 5, AuthorID: 2, Text: "original"}, nil)

	_, err := svc.EditPost(context.Background(), EditPostInput{
		CallerID:       9, // not the author
		PostID:         5,
		AuthorUsername: "author",
		Text:           "hijacked",
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
	postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestEditPostByAuthor(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newContentService(postRepo, new(MockGroupRepository), new(MockCommentRepository))

	postRepo.On("GetByIDAndAuthor", mock.Anything, uint(5), "author").
		Return(&models.Post{ID: 5, AuthorID: 2, Text: "original"}, nil)
	postRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Text == "edited"
	})).Return(nil)
	postRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Post{ID: 5, AuthorID: 2, Text: "edited"}, nil)

	post, err := svc.EditPost(context.Background(), EditPostInput{
		CallerID:       2,
		PostID:         5,
		AuthorUsername: "author",
		Text:           "edited",
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Text)
}

func TestEditPostUnknownPost(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newContentService(postRepo, new(MockGroupRepository), new(MockCommentRepository))

	postRepo.On("GetByIDAndAuthor", mock.Anything, uint(5), "ghost").
		Return(nil, models.NewNotFoundError("Post", 5))

	_, err := svc.EditPost(context.Background(), EditPostInput{
		CallerID: 2, PostID: 5, AuthorUsername: "ghost", Text: "x",
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestGetPostDetail(t *testing.T) {
	postRepo := new(MockPostRepository)
	commentRepo := new(MockCommentRepository)
	svc := newContentService(postRepo, new(MockGroupRepository), commentRepo)

	postRepo.On("GetByIDAndAuthor", mock.Anything, uint(5), "author").
		Return(&models.Post{ID: 5, AuthorID: 2}, nil)
	commentRepo.On("ListByPost", mock.Anything, uint(5)).
		Return([]models.Comment{{ID: 1, Text: "nice"}}, nil)
	postRepo.On("CountByAuthor", mock.Anything, uint(2)).Return(int64(12), nil)

	detail, err := svc.GetPost(context.Background(), 5, "author")
	require.NoError(t, err)
	assert.Equal(t, uint(5), detail.Post.ID)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, int64(12), detail.AuthorPostCount)
}

func TestAddCommentAnonymous(t *testing.T) {
	svc := newContentService(new(MockPostRepository), new(MockGroupRepository), new(MockCommentRepository))

	_, err := svc.AddComment(context.Background(), AddCommentInput{
		CallerID: 0, PostID: 5, AuthorUsername: "author", Text: "hi",
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
}

func TestAddCommentEmptyText(t *testing.T) {
	postRepo := new(MockPostRepository)
	commentRepo := new(MockCommentRepository)
	svc := newContentService(postRepo, new(MockGroupRepository), commentRepo)

	postRepo.On("GetByIDAndAuthor", mock.Anything, uint(5), "author").
		Return(&models.Post{ID: 5, AuthorID: 2}, nil)

	_, err := svc.AddComment(context.Background(), AddCommentInput{
		CallerID: 3, PostID: 5, AuthorUsername: "author", Text: "  ",
	})
	require.Error(t, err)
	assert.Equal(t, "text", models.FieldOf(err))
	commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddComment(t *testing.T) {
	postRepo := new(MockPostRepository)
	commentRepo := new(MockCommentRepository)
	svc := newContentService(postRepo, new(MockGroupRepository), commentRepo)

	postRepo.On("GetByIDAndAuthor", mock.Anything, uint(5), "author").
		Return(&models.Post{ID: 5, AuthorID: 2}, nil)
	commentRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
		return c.PostID == 5 && c.AuthorID == 3 && c.Text == "well said"
	})).Return(nil)

	comment, err := svc.AddComment(context.Background(), AddCommentInput{
		CallerID: 3, PostID: 5, AuthorUsername: "author", Text: "well said",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), comment.AuthorID)
}
