package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/models"
)

type PlaylistInput struct {
	Name        string `json:"name" validate:"required,min=3,max=50"`
	Description string `json:"description" validate:"required,max=1000"`
}

func (in *PlaylistInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
}

func (s *Service) CreatePlaylist(ctx context.Context, callerID string, in PlaylistInput) (*models.Playlist, error) {
	if callerID == "" {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	in.normalize()
	if err := check(in, "Name (3 to 50 characters) and description are required"); err != nil {
		return nil, err
	}
	p := &models.Playlist{Owner: callerID, Name: in.Name, Description: in.Description, Videos: []string{}}
	if err := s.store.CreatePlaylist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	userID, err := requireID(userID, "User")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.store.ListUserPlaylists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Playlist{}
	}
	return items, nil
}

// GetPlaylist returns the playlist populated with its owner and videos.
func (s *Service) GetPlaylist(ctx context.Context, playlistID string) (*models.PlaylistDetail, error) {
	playlistID, err := requireID(playlistID, "Playlist")
	if err != nil {
		return nil, err
	}
	return s.store.GetPlaylistDetail(ctx, playlistID)
}

func (s *Service) ownedPlaylist(ctx context.Context, callerID, playlistID string) (*models.Playlist, error) {
	playlistID, err := requireID(playlistID, "Playlist")
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if err := authorize(p.Owner, callerID, "perform this action"); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePlaylist replaces name and description; both are required.
func (s *Service) UpdatePlaylist(ctx context.Context, callerID, playlistID string, in PlaylistInput) (*models.PlaylistDetail, error) {
	in.normalize()
	if err := check(in, "Name (3 to 50 characters) and description are required"); err != nil {
		return nil, err
	}
	p, err := s.ownedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return nil, err
	}
	p.Name, p.Description = in.Name, in.Description
	if err := s.store.UpdatePlaylist(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetPlaylistDetail(ctx, p.ID)
}

func (s *Service) DeletePlaylist(ctx context.Context, callerID, playlistID string) error {
	p, err := s.ownedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, p.ID)
}

// AddVideoToPlaylist appends a video. Membership is unique: adding a video
// that is already present fails and leaves the playlist unchanged.
func (s *Service) AddVideoToPlaylist(ctx context.Context, callerID, playlistID, videoID string) (*models.PlaylistDetail, error) {
	p, err := s.ownedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return nil, err
	}
	v, err := s.visibleVideo(ctx, callerID, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddPlaylistVideo(ctx, p.ID, v.ID); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Validation("Video already exists in the playlist")
		}
		return nil, err
	}
	return s.store.GetPlaylistDetail(ctx, p.ID)
}

func (s *Service) RemoveVideoFromPlaylist(ctx context.Context, callerID, playlistID, videoID string) (*models.PlaylistDetail, error) {
	p, err := s.ownedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return nil, err
	}
	videoID, err = requireID(videoID, "Video")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	removed, err := s.store.RemovePlaylistVideo(ctx, p.ID, videoID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, apperr.Validation("Video not found in the playlist")
	}
	return s.store.GetPlaylistDetail(ctx, p.ID)
}
