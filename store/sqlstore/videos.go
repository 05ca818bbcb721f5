package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
	"vidtube/query"
)

var sortColumns = map[query.SortField]string{
	query.SortCreatedAt: "v.created_at",
	query.SortDuration:  "v.duration",
}

func (s *Store) CreateVideo(ctx context.Context, v *models.Video) error {
	if v.ID == "" {
		v.ID = newID()
	}
	if v.EncodingStatus == "" {
		v.EncodingStatus = models.EncodingPending
	}
	now, nowStr := s.stamp()
	v.CreatedAt, v.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (id, owner_id, video_url, video_handle, thumbnail_url, thumbnail_handle,
			title, description, duration, views, is_published, encoding_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Owner, v.VideoFile, v.Storage.Video, v.Thumbnail, v.Storage.Thumbnail,
		v.Title, v.Description, v.Duration, v.Views, v.IsPublished, string(v.EncodingStatus), nowStr, nowStr)
	return errors.Wrap(err, "insert video")
}

func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, video_url, video_handle, thumbnail_url, thumbnail_handle, title, description,
			duration, views, is_published, encoding_status, created_at, updated_at
		 FROM videos WHERE id = ?`, id,
	).Scan(&v.ID, &v.Owner, &v.VideoFile, &v.Storage.Video, &v.Thumbnail, &v.Storage.Thumbnail, &v.Title, &v.Description,
		&v.Duration, &v.Views, &v.IsPublished, &v.EncodingStatus, ts(&v.CreatedAt), ts(&v.UpdatedAt))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Video not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get video")
	}
	return &v, nil
}

func (s *Store) GetVideoDetail(ctx context.Context, id, viewerID string) (*models.VideoDetail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+s.videoDetail.sql+` FROM videos v JOIN users u ON u.id = v.owner_id WHERE v.id = ?`, id)
	d, err := s.videoDetail.scanRow(row)
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Video not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get video detail")
	}

	target := models.VideoTarget{VideoID: d.ID}
	if d.LikeCount, err = s.CountLikes(ctx, target); err != nil {
		return nil, err
	}
	if viewerID == "" {
		return d, nil
	}
	if d.IsLikedByUser, err = s.HasLike(ctx, models.LikeKey{UserID: viewerID, Target: target}); err != nil {
		return nil, err
	}
	if d.IsOwnerSubscribed, err = s.IsSubscribed(ctx, viewerID, d.Owner.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) UpdateVideo(ctx context.Context, v *models.Video) error {
	now, nowStr := s.stamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE videos SET title = ?, description = ?, thumbnail_url = ?, thumbnail_handle = ?, is_published = ?, updated_at = ?
		 WHERE id = ?`,
		v.Title, v.Description, v.Thumbnail, v.Storage.Thumbnail, v.IsPublished, nowStr, v.ID)
	if err != nil {
		return errors.Wrap(err, "update video")
	}
	if err := affected(res, "Video"); err != nil {
		return err
	}
	v.UpdatedAt = now
	return nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	return db.WithTx(ctx, s.db, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM likes WHERE (target_type = 'video' AND target_id = ?)
			    OR (target_type = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = ?))`, id, id); err != nil {
			return errors.Wrap(err, "delete video likes")
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM comments WHERE video_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete video comments")
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM playlist_videos WHERE video_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete playlist memberships")
		}
		res, err := conn.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
		if err != nil {
			return errors.Wrap(err, "delete video")
		}
		return affected(res, "Video")
	})
}

// videoWhere renders f as a WHERE clause over videos v.
func videoWhere(f query.VideoFilter) (string, []any) {
	var conds []string
	var args []any
	if f.PublishedOnly {
		conds = append(conds, "v.is_published = ?")
		args = append(args, true)
	}
	if f.OwnerID != "" {
		conds = append(conds, "v.owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.Text != "" {
		p := query.LikePattern(f.Text)
		conds = append(conds, `(LOWER(v.title) LIKE ? ESCAPE '\' OR LOWER(v.description) LIKE ? ESCAPE '\')`)
		args = append(args, p, p)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(o query.Sort) (string, error) {
	col, ok := sortColumns[o.Field]
	if !ok {
		return "", apperr.Validation("Sort by must be one of createdAt, duration")
	}
	dir := "DESC"
	if o.Dir == query.Asc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, v.id %s", col, dir, dir), nil
}

func (s *Store) ListVideos(ctx context.Context, spec query.VideoListSpec) ([]models.VideoSummary, int64, error) {
	where, args := videoWhere(spec.Filter)
	order, err := orderBy(spec.Sort)
	if err != nil {
		return nil, 0, err
	}
	from := ` FROM videos v JOIN users u ON u.id = v.owner_id`

	total, err := countQuery(ctx, s.db, `SELECT COUNT(*)`+from+where, args...)
	if err != nil {
		return nil, 0, err
	}

	pageArgs := append(append([]any{}, args...), spec.Limit, models.Skip(spec.Page, spec.Limit))
	rows, err := s.db.QueryContext(ctx, `SELECT `+s.videoSummary.sql+from+where+order+` LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list videos")
	}
	items, err := s.videoSummary.scanAll(rows)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scan videos")
	}
	return items, total, nil
}

func (s *Store) SetEncodingStatus(ctx context.Context, id string, st models.EncodingStatus) error {
	if !st.Valid() {
		return apperr.Validation("invalid encoding status %q", st)
	}
	_, nowStr := s.stamp()
	res, err := s.db.ExecContext(ctx, `UPDATE videos SET encoding_status = ?, updated_at = ? WHERE id = ?`, string(st), nowStr, id)
	if err != nil {
		return errors.Wrap(err, "set encoding status")
	}
	return affected(res, "Video")
}

func (s *Store) LikedVideos(ctx context.Context, userID string) ([]models.VideoSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.videoSummary.sql+`
		 FROM likes l
		 JOIN videos v ON l.target_type = 'video' AND v.id = l.target_id
		 JOIN users u ON u.id = v.owner_id
		 WHERE l.liked_by = ? AND (v.is_published = ? OR v.owner_id = l.liked_by)
		 ORDER BY l.created_at DESC, l.id DESC`, userID, true)
	if err != nil {
		return nil, errors.Wrap(err, "liked videos")
	}
	items, err := s.videoSummary.scanAll(rows)
	return items, errors.Wrap(err, "scan liked videos")
}
