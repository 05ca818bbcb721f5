package sqlstore

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
)

func (s *Store) CreateTweet(ctx context.Context, t *models.Tweet) error {
	if t.ID == "" {
		t.ID = newID()
	}
	now, nowStr := s.stamp()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tweets (id, owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Owner, t.Content, nowStr, nowStr)
	return errors.Wrap(err, "insert tweet")
}

func (s *Store) GetTweet(ctx context.Context, id string) (*models.Tweet, error) {
	var t models.Tweet
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, content, created_at, updated_at FROM tweets WHERE id = ?`, id,
	).Scan(&t.ID, &t.Owner, &t.Content, ts(&t.CreatedAt), ts(&t.UpdatedAt))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Tweet not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get tweet")
	}
	return &t, nil
}

func (s *Store) UpdateTweet(ctx context.Context, t *models.Tweet) error {
	now, nowStr := s.stamp()
	res, err := s.db.ExecContext(ctx, `UPDATE tweets SET content = ?, updated_at = ? WHERE id = ?`, t.Content, nowStr, t.ID)
	if err != nil {
		return errors.Wrap(err, "update tweet")
	}
	if err := affected(res, "Tweet"); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

func (s *Store) DeleteTweet(ctx context.Context, id string) error {
	return db.WithTx(ctx, s.db, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM likes WHERE target_type = 'tweet' AND target_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete tweet likes")
		}
		res, err := conn.ExecContext(ctx, `DELETE FROM tweets WHERE id = ?`, id)
		if err != nil {
			return errors.Wrap(err, "delete tweet")
		}
		return affected(res, "Tweet")
	})
}

func (s *Store) ListUserTweets(ctx context.Context, userID, viewerID string) ([]models.TweetView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.tweetFeed.sql+`
		 FROM tweets t
		 JOIN users u ON u.id = t.owner_id
		 LEFT JOIN (SELECT target_id, COUNT(*) AS n FROM likes WHERE target_type = 'tweet' GROUP BY target_id) lc
		        ON lc.target_id = t.id
		 LEFT JOIN likes vl ON vl.target_type = 'tweet' AND vl.target_id = t.id AND vl.liked_by = ?
		 WHERE t.owner_id = ?
		 ORDER BY t.created_at DESC, t.id DESC`, viewerID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list tweets")
	}
	items, err := s.tweetFeed.scanAll(rows)
	return items, errors.Wrap(err, "scan tweets")
}
