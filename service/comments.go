package service

import (
	"context"
	"strings"

	"vidtube/models"
)

type CommentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// ListComments returns one page of a video's comments, newest first.
func (s *Service) ListComments(ctx context.Context, callerID, videoID, page, limit string) (models.Page[models.CommentView], error) {
	pg, err := s.al.ParsePagination(page, limit)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	v, err := s.visibleVideo(ctx, callerID, videoID)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	items, total, err := s.store.ListVideoComments(ctx, v.ID, callerID, pg)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	return models.NewPage(items, pg.Page, pg.Limit, total), nil
}

func (s *Service) AddComment(ctx context.Context, callerID, videoID string, in CommentInput) (*models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in, "Comment content cannot be empty"); err != nil {
		return nil, err
	}
	v, err := s.visibleVideo(ctx, callerID, videoID)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{Video: v.ID, Owner: callerID, Content: in.Content}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ownedComment(ctx context.Context, callerID, commentID, action string) (*models.Comment, error) {
	commentID, err := requireID(commentID, "Comment")
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(c.Owner, callerID, action); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateComment(ctx context.Context, callerID, commentID string, in CommentInput) (*models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in, "Comment content cannot be empty"); err != nil {
		return nil, err
	}
	c, err := s.ownedComment(ctx, callerID, commentID, "update this comment")
	if err != nil {
		return nil, err
	}
	c.Content = in.Content
	if err := s.store.UpdateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, callerID, commentID string) error {
	c, err := s.ownedComment(ctx, callerID, commentID, "delete this comment")
	if err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, c.ID)
}
