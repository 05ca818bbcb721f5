package sqlstore

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
	"vidtube/query"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = newID()
	}
	now, nowStr := s.stamp()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Video, c.Owner, c.Content, nowStr, nowStr)
	return errors.Wrap(err, "insert comment")
}

func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, owner_id, content, created_at, updated_at FROM comments WHERE id = ?`, id,
	).Scan(&c.ID, &c.Video, &c.Owner, &c.Content, ts(&c.CreatedAt), ts(&c.UpdatedAt))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Comment not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get comment")
	}
	return &c, nil
}

func (s *Store) UpdateComment(ctx context.Context, c *models.Comment) error {
	now, nowStr := s.stamp()
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`, c.Content, nowStr, c.ID)
	if err != nil {
		return errors.Wrap(err, "update comment")
	}
	if err := affected(res, "Comment"); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return db.WithTx(ctx, s.db, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM likes WHERE target_type = 'comment' AND target_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete comment likes")
		}
		res, err := conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
		if err != nil {
			return errors.Wrap(err, "delete comment")
		}
		return affected(res, "Comment")
	})
}

// ListVideoComments computes liked for the whole page with one join against
// the viewer's likes; the unique like key bounds it to one row per comment.
func (s *Store) ListVideoComments(ctx context.Context, videoID, viewerID string, pg query.Pagination) ([]models.CommentView, int64, error) {
	total, err := countQuery(ctx, s.db,
		`SELECT COUNT(*) FROM comments c JOIN users u ON u.id = c.owner_id WHERE c.video_id = ?`, videoID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.commentFeed.sql+`
		 FROM comments c
		 JOIN videos v ON v.id = c.video_id
		 JOIN users u ON u.id = c.owner_id
		 LEFT JOIN likes vl ON vl.target_type = 'comment' AND vl.target_id = c.id AND vl.liked_by = ?
		 WHERE c.video_id = ?
		 ORDER BY c.created_at DESC, c.id DESC
		 LIMIT ? OFFSET ?`,
		viewerID, videoID, pg.Limit, models.Skip(pg.Page, pg.Limit))
	if err != nil {
		return nil, 0, errors.Wrap(err, "list comments")
	}
	items, err := s.commentFeed.scanAll(rows)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scan comments")
	}
	return items, total, nil
}
