package service

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/models"
)

// ChannelStats totals a channel's videos, views, video likes and
// subscribers.
func (s *Service) ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
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
	return s.store.ChannelStats(ctx, channelID)
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }
