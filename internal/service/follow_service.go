package service

import (
	"context"

	"inkwell/internal/repository"
)

// FollowService implements the follow/unfollow actions. Both are idempotent
// end to end: reaching the already-reached state succeeds quietly. Self-follow
// is blocked here, at the action layer; the data model itself does not forbid
// the edge.
type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewFollowService creates a new FollowService.
func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *FollowService {
	return &FollowService{userRepo: userRepo, followRepo: followRepo}
}

// Follow ensures the viewer follows targetUsername. A self-follow attempt is
// a no-op, an unknown target is NotFound, an existing edge is success.
func (s *FollowService) Follow(ctx context.Context, viewerID uint, targetUsername string) error {
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return err
	}
	if viewer.Username == targetUsername {
		return nil
	}

	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	return s.followRepo.Ensure(ctx, viewer.ID, target.ID)
}

// Unfollow ensures no edge exists from the viewer to targetUsername.
func (s *FollowService) Unfollow(ctx context.Context, viewerID uint, targetUsername string) error {
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return err
	}
	if viewer.Username == targetUsername {
		return nil
	}

	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	return s.followRepo.Remove(ctx, viewer.ID, target.ID)
}
