package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/models"
)

// targetLookup reports apperr.ErrNotFound when the caller cannot like id.
type targetLookup func(ctx context.Context, callerID, id string) error

// newTargetLookups has one entry per like target kind. A kind without an
// entry is a programming error caught at startup.
func (s *Service) newTargetLookups() map[models.TargetKind]targetLookup {
	m := map[models.TargetKind]targetLookup{
		models.TargetVideo: func(ctx context.Context, callerID, id string) error {
			_, err := s.visibleVideo(ctx, callerID, id)
			return err
		},
		models.TargetComment: func(ctx context.Context, callerID, id string) error {
			c, err := s.store.GetComment(ctx, id)
			if err != nil {
				return err
			}
			// Comments on a draft are hidden along with the video.
			if _, err := s.visibleVideo(ctx, callerID, c.Video); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.NotFound("Comment not found")
				}
				return err
			}
			return nil
		},
		models.TargetTweet: func(ctx context.Context, _, id string) error {
			_, err := s.store.GetTweet(ctx, id)
			return err
		},
	}
	for _, k := range models.TargetKinds {
		if m[k] == nil {
			panic(fmt.Sprintf("service: no existence lookup for like target %q", k))
		}
	}
	return m
}

// ToggleLike flips the caller's like on target. The delete is attempted
// first; if nothing was removed the like is inserted, and a duplicate insert
// from a concurrent toggle means the target is already liked.
func (s *Service) ToggleLike(ctx context.Context, callerID string, target models.LikeTarget) (*models.ToggleResult, error) {
	if callerID == "" {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	if target == nil {
		return nil, apperr.Validation("Like target is required")
	}
	id, err := requireID(target.TargetID(), capitalize(string(target.Kind())))
	if err != nil {
		return nil, err
	}
	target, err = models.NewLikeTarget(target.Kind(), id)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	if err := s.likeTargets[target.Kind()](ctx, callerID, id); err != nil {
		return nil, err
	}

	key := models.LikeKey{UserID: callerID, Target: target}
	removed, err := s.store.DeleteLike(ctx, key)
	if err != nil {
		return nil, err
	}
	if removed {
		return &models.ToggleResult{Liked: false}, nil
	}

	like := &models.Like{LikedBy: callerID, Target: target}
	if err := s.store.InsertLike(ctx, like); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return &models.ToggleResult{Liked: true}, nil
		}
		return nil, err
	}
	return &models.ToggleResult{Liked: true, Like: like}, nil
}

// LikedVideos lists the videos the caller likes.
func (s *Service) LikedVideos(ctx context.Context, callerID string) ([]models.VideoSummary, error) {
	if callerID == "" {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	items, err := s.store.LikedVideos(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.VideoSummary{}
	}
	return items, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
