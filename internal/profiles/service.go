package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"openfeed/internal/core"
)

// View is a profile page: the profile row plus its aggregate counters and
// the viewer's follow state.
type View struct {
	core.ProfileModel
	PostsCount       int64 `json:"posts_count"`
	FollowersCount   int64 `json:"followers_count"`
	FollowingCount   int64 `json:"following_count"`
	FollowedByViewer bool  `json:"followed_by_viewer"`
}

type Service struct {
	Logger   *slog.Logger
	Profiles core.ProfileRepository
	Posts    core.PostRepository
	Follows  core.FollowRepository
	Changes  core.ChangePublisher
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "profiles.Service")
	return nil
}

// Profile assembles one user's page. PostsCount excludes rejected posts, so
// the number matches what the profile's post list shows.
func (s *Service) Profile(ctx context.Context, viewerID, userID string) (View, error) {
	profile, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}

	postsCount, err := s.Posts.CountVisibleByAuthor(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	followers, err := s.Follows.CountFollowers(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	following, err := s.Follows.CountFollowing(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	view := View{
		ProfileModel:   profile,
		PostsCount:     postsCount,
		FollowersCount: followers,
		FollowingCount: following,
	}

	if viewerID != "" && viewerID != userID {
		view.FollowedByViewer, err = s.Follows.Exists(ctx, viewerID, userID)
		if err != nil {
			return View{}, fmt.Errorf("%w: %w", core.ErrStorage, err)
		}
	}

	return view, nil
}

// Follow creates a directed follow edge. Following an already-followed user
// is a no-op, so retries and double-clicks are harmless.
func (s *Service) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == "" {
		return core.ErrUnauthorized
	}
	if followerID == followingID {
		return fmt.Errorf("%w: cannot follow yourself", core.ErrInvalidInput)
	}

	if _, err := s.Profiles.Get(ctx, followingID); err != nil {
		return err
	}

	err := s.Follows.Insert(ctx, &core.FollowModel{
		FollowerID:  followerID,
		FollowingID: followingID,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	s.publish(ctx, core.ChangeInsert, followingID)

	return nil
}

// Unfollow removes the edge if present.
func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	if followerID == "" {
		return core.ErrUnauthorized
	}

	if err := s.Follows.Delete(ctx, followerID, followingID); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}

	s.publish(ctx, core.ChangeDelete, followingID)

	return nil
}

func (s *Service) publish(ctx context.Context, op core.ChangeOp, userID string) {
	err := s.Changes.Publish(ctx, core.ChangeEvent{
		Table: core.FollowModel{}.TableName(),
		Op:    op,
		RowID: userID,
		At:    time.Now().UTC(),
	})
	if err != nil {
		s.Logger.Error("failed to publish change event", "error", err, "user", userID)
	}
}
