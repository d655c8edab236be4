package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// FeedService assembles the paginated post listings: everyone, by group, by
// author, and the viewer's followed set.
type FeedService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	groupRepo  repository.GroupRepository
	followRepo repository.FollowRepository
	feedCache  *cache.FeedCache
}

// NewFeedService creates a new FeedService.
func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	followRepo repository.FollowRepository,
	feedCache *cache.FeedCache,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		followRepo: followRepo,
		feedCache:  feedCache,
	}
}

// GroupFeedResult is a group feed page together with the group itself.
type GroupFeedResult struct {
	Group models.Group             `json:"group"`
	Page  models.Page[models.Post] `json:"page"`
}

// AuthorProfile is an author feed page plus the social-graph context a
// profile view needs. ViewerIsAuthor, ViewerFollows, and an anonymous viewer
// are distinct states; CanFollow is the single "show an actionable follow
// button" affordance derived from them.
type AuthorProfile struct {
	Author         models.User              `json:"author"`
	Page           models.Page[models.Post] `json:"page"`
	FollowingCount int64                    `json:"following_count"`
	FollowerCount  int64                    `json:"follower_count"`
	ViewerIsAuthor bool                     `json:"viewer_is_author"`
	ViewerFollows  bool                     `json:"viewer_follows"`
	CanFollow      bool                     `json:"can_follow"`
}

// MainFeed returns one page of all posts. Only the default request
// (cacheable=true, meaning no explicit page parameter) consults or fills the
// listing cache; within the TTL window it returns the previous snapshot even
// if posts were created in the interim.
func (s *FeedService) MainFeed(ctx context.Context, page int, cacheable bool) (models.Page[models.Post], error) {
	if cacheable {
		if snap, ok := s.feedCache.Get(); ok {
			return snap, nil
		}
	}

	result, err := s.paginate(ctx, page,
		s.postRepo.CountAll,
		s.postRepo.ListAll,
	)
	if err != nil {
		return models.Page[models.Post]{}, err
	}

	if cacheable {
		s.feedCache.Set(result)
	}
	return result, nil
}

// GroupFeed returns one page of a group's posts.
func (s *FeedService) GroupFeed(ctx context.Context, slug string, page int) (*GroupFeedResult, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	result, err := s.paginate(ctx, page,
		func(ctx context.Context) (int64, error) {
			return s.postRepo.CountByGroup(ctx, group.ID)
		},
		func(ctx context.Context, limit, offset int) ([]models.Post, error) {
			return s.postRepo.ListByGroup(ctx, group.ID, limit, offset)
		},
	)
	if err != nil {
		return nil, err
	}
	return &GroupFeedResult{Group: *group, Page: result}, nil
}

// AuthorFeed returns one page of an author's posts plus follow counts and the
// viewer's relation to the author. viewerID 0 means anonymous.
func (s *FeedService) AuthorFeed(ctx context.Context, username string, page int, viewerID uint) (*AuthorProfile, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	result, err := s.paginate(ctx, page,
		func(ctx context.Context) (int64, error) {
			return s.postRepo.CountByAuthor(ctx, author.ID)
		},
		func(ctx context.Context, limit, offset int) ([]models.Post, error) {
			return s.postRepo.ListByAuthor(ctx, author.ID, limit, offset)
		},
	)
	if err != nil {
		return nil, err
	}

	followingCount, err := s.followRepo.CountFollowing(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	followerCount, err := s.followRepo.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	profile := &AuthorProfile{
		Author:         *author,
		Page:           result,
		FollowingCount: followingCount,
		FollowerCount:  followerCount,
		ViewerIsAuthor: viewerID != 0 && viewerID == author.ID,
	}

	if viewerID != 0 && !profile.ViewerIsAuthor {
		follows, err := s.followRepo.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
		profile.ViewerFollows = follows
	}

	// Anonymous viewers, the author, and existing followers all get no
	// actionable follow button, for different reasons.
	profile.CanFollow = viewerID != 0 && !profile.ViewerIsAuthor && !profile.ViewerFollows

	return profile, nil
}

// FollowedFeed returns one page of posts whose authors are in the viewer's
// follow set.
func (s *FeedService) FollowedFeed(ctx context.Context, viewerID uint, page int) (models.Page[models.Post], error) {
	if viewerID == 0 {
		return models.Page[models.Post]{}, models.NewUnauthorizedError("Authentication required")
	}

	return s.paginate(ctx, page,
		func(ctx context.Context) (int64, error) {
			return s.postRepo.CountFollowed(ctx, viewerID)
		},
		func(ctx context.Context, limit, offset int) ([]models.Post, error) {
			return s.postRepo.ListFollowed(ctx, viewerID, limit, offset)
		},
	)
}

// ClearCache invalidates the main feed snapshot immediately.
func (s *FeedService) ClearCache() {
	s.feedCache.Clear()
}

// paginate runs the count-clamp-list sequence shared by every feed. The
// requested page number is clamped into the valid range before the offset
// query, so out-of-range requests return the nearest valid page.
func (s *FeedService) paginate(
	ctx context.Context,
	page int,
	count func(ctx context.Context) (int64, error),
	list func(ctx context.Context, limit, offset int) ([]models.Post, error),
) (models.Page[models.Post], error) {
	total, err := count(ctx)
	if err != nil {
		return models.Page[models.Post]{}, err
	}

	number := models.ClampPage(page, total, models.FeedPageSize)
	items, err := list(ctx, models.FeedPageSize, models.Offset(number, models.FeedPageSize))
	if err != nil {
		return models.Page[models.Post]{}, err
	}

	return models.NewPage(items, total, number, models.FeedPageSize), nil
}
