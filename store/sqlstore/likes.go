package sqlstore

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
)

func (s *Store) InsertLike(ctx context.Context, l *models.Like) error {
	if l.Target == nil {
		return apperr.Validation("like target is required")
	}
	if l.ID == "" {
		l.ID = newID()
	}
	now, nowStr := s.stamp()
	l.CreatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO likes (id, liked_by, target_type, target_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.LikedBy, string(l.Target.Kind()), l.Target.TargetID(), nowStr)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("Already liked", err)
	}
	return errors.Wrap(err, "insert like")
}

func (s *Store) DeleteLike(ctx context.Context, key models.LikeKey) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM likes WHERE liked_by = ? AND target_type = ? AND target_id = ?`,
		key.UserID, string(key.Target.Kind()), key.Target.TargetID())
	if err != nil {
		return false, errors.Wrap(err, "delete like")
	}
	return removed(res)
}

func (s *Store) HasLike(ctx context.Context, key models.LikeKey) (bool, error) {
	n, err := countQuery(ctx, s.db,
		`SELECT COUNT(*) FROM likes WHERE liked_by = ? AND target_type = ? AND target_id = ?`,
		key.UserID, string(key.Target.Kind()), key.Target.TargetID())
	return n > 0, err
}

func (s *Store) CountLikes(ctx context.Context, target models.LikeTarget) (int64, error) {
	return countQuery(ctx, s.db,
		`SELECT COUNT(*) FROM likes WHERE target_type = ? AND target_id = ?`,
		string(target.Kind()), target.TargetID())
}
