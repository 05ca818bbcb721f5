package service

import (
	"context"
	"strings"

	"vidtube/apperr"
	"vidtube/models"
)

type TweetInput struct {
	Content string `json:"content" validate:"required,max=280"`
}

func (s *Service) CreateTweet(ctx context.Context, callerID string, in TweetInput) (*models.Tweet, error) {
	if callerID == "" {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in, "Tweet content is required"); err != nil {
		return nil, err
	}
	t := &models.Tweet{Owner: callerID, Content: in.Content}
	if err := s.store.CreateTweet(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UserTweets lists a user's tweets, newest first, with like counts and the
// caller's liked flag.
func (s *Service) UserTweets(ctx context.Context, callerID, userID string) ([]models.TweetView, error) {
	userID, err := requireID(userID, "User")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.store.ListUserTweets(ctx, userID, callerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.TweetView{}
	}
	return items, nil
}

func (s *Service) ownedTweet(ctx context.Context, callerID, tweetID, action string) (*models.Tweet, error) {
	tweetID, err := requireID(tweetID, "Tweet")
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetTweet(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if err := authorize(t.Owner, callerID, action); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) UpdateTweet(ctx context.Context, callerID, tweetID string, in TweetInput) (*models.Tweet, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in, "Tweet content is required"); err != nil {
		return nil, err
	}
	t, err := s.ownedTweet(ctx, callerID, tweetID, "update this tweet")
	if err != nil {
		return nil, err
	}
	t.Content = in.Content
	if err := s.store.UpdateTweet(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) DeleteTweet(ctx context.Context, callerID, tweetID string) error {
	t, err := s.ownedTweet(ctx, callerID, tweetID, "delete this tweet")
	if err != nil {
		return err
	}
	return s.store.DeleteTweet(ctx, t.ID)
}
