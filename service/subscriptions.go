package service

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/models"
)

type SubscriptionResult struct {
	Subscribed bool   `json:"subscribed"`
	ChannelID  string `json:"channelId"`
}

// ToggleSubscription subscribes the caller to channelID or cancels an
// existing subscription, resolving races the same way as ToggleLike.
func (s *Service) ToggleSubscription(ctx context.Context, callerID, channelID string) (*SubscriptionResult, error) {
	if callerID == "" {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	channelID, err := requireID(channelID, "Channel")
	if err != nil {
		return nil, err
	}
	if channelID == callerID {
		return nil, apperr.Validation("You cannot subscribe to your own channel")
	}
	if _, err := s.store.GetUser(ctx, channelID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Channel not found")
		}
		return nil, err
	}

	removed, err := s.store.DeleteSubscription(ctx, callerID, channelID)
	if err != nil {
		return nil, err
	}
	if removed {
		return &SubscriptionResult{Subscribed: false, ChannelID: channelID}, nil
	}
	err = s.store.InsertSubscription(ctx, &models.Subscription{Subscriber: callerID, Channel: channelID})
	if err != nil && !errors.Is(err, apperr.ErrConflict) {
		return nil, err
	}
	return &SubscriptionResult{Subscribed: true, ChannelID: channelID}, nil
}

func (s *Service) ChannelSubscribers(ctx context.Context, channelID string) ([]models.UserSummary, error) {
	channelID, err := requireID(channelID, "Channel")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, channelID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Channel not found")
		}
		return nil, err
	}
	return nonNil(s.store.ListSubscribers(ctx, channelID))
}

func (s *Service) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error) {
	subscriberID, err := requireID(subscriberID, "Subscriber")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, subscriberID); err != nil {
		return nil, err
	}
	return nonNil(s.store.ListSubscribedChannels(ctx, subscriberID))
}

func nonNil(items []models.UserSummary, err error) ([]models.UserSummary, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.UserSummary{}
	}
	return items, nil
}
