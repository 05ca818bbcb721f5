package sqlstore

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
)

func (s *Store) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Videos == nil {
		p.Videos = []string{}
	}
	now, nowStr := s.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Owner, p.Name, p.Description, nowStr, nowStr)
	return errors.Wrap(err, "insert playlist")
}

func (s *Store) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	var p models.Playlist
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at FROM playlists WHERE id = ?`, id,
	).Scan(&p.ID, &p.Owner, &p.Name, &p.Description, ts(&p.CreatedAt), ts(&p.UpdatedAt))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Playlist not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get playlist")
	}
	if p.Videos, err = s.playlistVideoIDs(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) playlistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id FROM playlist_videos WHERE playlist_id = ? ORDER BY position`, playlistID)
	if err != nil {
		return nil, errors.Wrap(err, "playlist videos")
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan playlist video")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "playlist videos")
}

func (s *Store) GetPlaylistDetail(ctx context.Context, id string) (*models.PlaylistDetail, error) {
	var d models.PlaylistDetail
	err := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.description, p.created_at, p.updated_at, `+s.userSummary.sql+`
		 FROM playlists p JOIN users u ON u.id = p.owner_id WHERE p.id = ?`, id,
	).Scan(append([]any{&d.ID, &d.Name, &d.Description, ts(&d.CreatedAt), ts(&d.UpdatedAt)}, s.userSummary.targets(&d.Owner)...)...)
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Playlist not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get playlist detail")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.videoSummary.sql+`
		 FROM playlist_videos pv
		 JOIN videos v ON v.id = pv.video_id
		 JOIN users u ON u.id = v.owner_id
		 WHERE pv.playlist_id = ?
		 ORDER BY pv.position`, id)
	if err != nil {
		return nil, errors.Wrap(err, "playlist detail videos")
	}
	if d.Videos, err = s.videoSummary.scanAll(rows); err != nil {
		return nil, errors.Wrap(err, "scan playlist videos")
	}
	return &d, nil
}

func (s *Store) ListUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at FROM playlists
		 WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list playlists")
	}
	out := []models.Playlist{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Owner, &p.Name, &p.Description, ts(&p.CreatedAt), ts(&p.UpdatedAt)); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan playlist")
		}
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list playlists")
	}
	// Member ids are read after the listing cursor is closed.
	for i := range out {
		if out[i].Videos, err = s.playlistVideoIDs(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) UpdatePlaylist(ctx context.Context, p *models.Playlist) error {
	now, nowStr := s.stamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?`, p.Name, p.Description, nowStr, p.ID)
	if err != nil {
		return errors.Wrap(err, "update playlist")
	}
	if err := affected(res, "Playlist"); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	return db.WithTx(ctx, s.db, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM playlist_videos WHERE playlist_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete playlist videos")
		}
		res, err := conn.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
		if err != nil {
			return errors.Wrap(err, "delete playlist")
		}
		return affected(res, "Playlist")
	})
}

// AddPlaylistVideo relies on the (playlist_id, video_id) primary key, so two
// concurrent adds of the same video cannot both succeed.
func (s *Store) AddPlaylistVideo(ctx context.Context, playlistID, videoID string) error {
	_, nowStr := s.stamp()
	return db.WithTx(ctx, s.db, func(conn *db.CompatConn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO playlist_videos (playlist_id, video_id, position, added_at)
			 SELECT ?, ?, COALESCE(MAX(position), 0) + 1, ? FROM playlist_videos WHERE playlist_id = ?`,
			playlistID, videoID, nowStr, playlistID)
		if db.IsUniqueViolation(err) {
			return apperr.Conflict("Video already exists in the playlist", err)
		}
		if err != nil {
			return errors.Wrap(err, "add playlist video")
		}
		res, err := conn.ExecContext(ctx, `UPDATE playlists SET updated_at = ? WHERE id = ?`, nowStr, playlistID)
		if err != nil {
			return errors.Wrap(err, "touch playlist")
		}
		return affected(res, "Playlist")
	})
}

func (s *Store) RemovePlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error) {
	_, nowStr := s.stamp()
	var ok bool
	err := db.WithTx(ctx, s.db, func(conn *db.CompatConn) error {
		res, err := conn.ExecContext(ctx,
			`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`, playlistID, videoID)
		if err != nil {
			return errors.Wrap(err, "remove playlist video")
		}
		if ok, err = removed(res); err != nil || !ok {
			return err
		}
		_, err = conn.ExecContext(ctx, `UPDATE playlists SET updated_at = ? WHERE id = ?`, nowStr, playlistID)
		return errors.Wrap(err, "touch playlist")
	})
	return ok, err
}
