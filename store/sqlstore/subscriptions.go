package sqlstore

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
)

func (s *Store) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	n, err := countQuery(ctx, s.db,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`, subscriberID, channelID)
	return n > 0, err
}

func (s *Store) InsertSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = newID()
	}
	now, nowStr := s.stamp()
	sub.CreatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at) VALUES (?, ?, ?, ?)`,
		sub.ID, sub.Subscriber, sub.Channel, nowStr)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("Already subscribed", err)
	}
	return errors.Wrap(err, "insert subscription")
}

func (s *Store) DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`, subscriberID, channelID)
	if err != nil {
		return false, errors.Wrap(err, "delete subscription")
	}
	return removed(res)
}

func (s *Store) ListSubscribers(ctx context.Context, channelID string) ([]models.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.userSummary.sql+` FROM subscriptions sb JOIN users u ON u.id = sb.subscriber_id
		 WHERE sb.channel_id = ? ORDER BY sb.created_at DESC, sb.id DESC`, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "list subscribers")
	}
	items, err := s.userSummary.scanAll(rows)
	return items, errors.Wrap(err, "scan subscribers")
}

func (s *Store) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.userSummary.sql+` FROM subscriptions sb JOIN users u ON u.id = sb.channel_id
		 WHERE sb.subscriber_id = ? ORDER BY sb.created_at DESC, sb.id DESC`, subscriberID)
	if err != nil {
		return nil, errors.Wrap(err, "list channels")
	}
	items, err := s.userSummary.scanAll(rows)
	return items, errors.Wrap(err, "scan channels")
}
