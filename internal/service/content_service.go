// Package service holds the application's business logic between the HTTP
// layer and the repositories.
package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/media"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// ContentService implements post and comment authoring. The author of every
// created record is the authenticated caller; client-supplied author values
// have no path into this service.
type ContentService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	store       *media.Store
	now         func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	store *media.Store,
) *ContentService {
	return &ContentService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		store:       store,
		now:         time.Now,
	}
}

// SetClock overrides the service's time source. Test hook.
func (s *ContentService) SetClock(now func() time.Time) {
	s.now = now
}

// CreatePostInput carries authoring input. AuthorID always comes from the
// authenticated caller, never from the request body.
type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    *media.Upload
}

// EditPostInput carries an edit. CallerID must match the post's author.
type EditPostInput struct {
	CallerID       uint
	PostID         uint
	AuthorUsername string
	Text           string
	GroupID        *uint
	Image          *media.Upload
}

// AddCommentInput carries a new comment on a compound-resolved post.
type AddCommentInput struct {
	CallerID       uint
	PostID         uint
	AuthorUsername string
	Text           string
}

// PostDetail is the post view: the post, its comments, and how many posts the
// author has published in total.
type PostDetail struct {
	Post            models.Post      `json:"post"`
	Comments        []models.Comment `json:"comments"`
	AuthorPostCount int64            `json:"author_post_count"`
}

// CreatePost validates and persists a new post. The publication timestamp is
// set here, once; edits never touch it.
func (s *ContentService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := s.validateBody(ctx, in.Text, in.GroupID); err != nil {
		return nil, err
	}

	imagePath := ""
	if in.Image != nil {
		path, err := s.store.Save(in.Image)
		if err != nil {
			return nil, err
		}
		imagePath = path
	}

	post := &models.Post{
		Text:     in.Text,
		PubDate:  s.now().UTC(),
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
		Image:    imagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// EditPost applies an edit after the ownership check. Resolution is the same
// compound (id, author username) lookup as GetPost; a caller who is not the
// author gets an authorization error, not a different post.
func (s *ContentService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByIDAndAuthor(ctx, in.PostID, in.AuthorUsername)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.CallerID {
		return nil, models.NewUnauthorizedError("Only the author can edit this post")
	}
	if err := s.validateBody(ctx, in.Text, in.GroupID); err != nil {
		return nil, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	if in.Image != nil {
		path, err := s.store.Save(in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = path
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost resolves a post by the compound (id, author username) lookup and
// returns its detail view.
func (s *ContentService) GetPost(ctx context.Context, postID uint, authorUsername string) (*PostDetail, error) {
	post, err := s.postRepo.GetByIDAndAuthor(ctx, postID, authorUsername)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		Post:            *post,
		Comments:        comments,
		AuthorPostCount: count,
	}, nil
}

// AddComment persists a comment by the authenticated caller on a
// compound-resolved post.
func (s *ContentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.CallerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.postRepo.GetByIDAndAuthor(ctx, in.PostID, in.AuthorUsername)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewFieldValidationError("text", "Text is required")
	}

	comment := &models.Comment{
		Text:     in.Text,
		PostID:   post.ID,
		AuthorID: in.CallerID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ContentService) validateBody(ctx context.Context, text string, groupID *uint) error {
	if strings.TrimSpace(text) == "" {
		return models.NewFieldValidationError("text", "Text is required")
	}
	if groupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
			if models.CodeOf(err) == models.CodeNotFound {
				return models.NewFieldValidationError("group", "Unknown group")
			}
			return err
		}
	}
	return nil
}
