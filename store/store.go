// Package store declares the persistence contract shared by the SQL and
// MongoDB backends. Every read that leaves the service is one of the view
// types in models; credentials are reachable only through GetCredentials.
//
// Implementations report a missing entity as apperr.ErrNotFound and a
// uniqueness violation as apperr.ErrConflict.
package store

import (
	"context"

	"vidtube/models"
	"vidtube/query"
)

type Users interface {
	CreateUser(ctx context.Context, u *models.User, passwordHash string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetCredentials resolves a username or email to the account id and its
	// password hash.
	GetCredentials(ctx context.Context, login string) (id, passwordHash string, err error)
}

type Videos interface {
	CreateVideo(ctx context.Context, v *models.Video) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	// GetVideoDetail joins the owner and computes like count, whether viewerID
	// likes the video and whether viewerID subscribes to its owner.
	GetVideoDetail(ctx context.Context, id, viewerID string) (*models.VideoDetail, error)
	// UpdateVideo persists title, description, thumbnail and publish state.
	UpdateVideo(ctx context.Context, v *models.Video) error
	// DeleteVideo removes the video with its comments, the likes on both and
	// its playlist memberships.
	DeleteVideo(ctx context.Context, id string) error
	// ListVideos returns one page of spec plus the total number of matches.
	ListVideos(ctx context.Context, spec query.VideoListSpec) ([]models.VideoSummary, int64, error)
	SetEncodingStatus(ctx context.Context, id string, s models.EncodingStatus) error
	// LikedVideos lists the videos userID likes, most recently liked first.
	LikedVideos(ctx context.Context, userID string) ([]models.VideoSummary, error)
}

type Comments interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, c *models.Comment) error
	// DeleteComment removes the comment and the likes on it.
	DeleteComment(ctx context.Context, id string) error
	// ListVideoComments returns one page of a video's comments, newest first,
	// with the viewer's liked flag computed for the whole page at once.
	ListVideoComments(ctx context.Context, videoID, viewerID string, pg query.Pagination) ([]models.CommentView, int64, error)
}

type Likes interface {
	// InsertLike fails with apperr.ErrConflict when the key already exists.
	InsertLike(ctx context.Context, l *models.Like) error
	// DeleteLike reports whether a like was removed.
	DeleteLike(ctx context.Context, key models.LikeKey) (bool, error)
	HasLike(ctx context.Context, key models.LikeKey) (bool, error)
	CountLikes(ctx context.Context, target models.LikeTarget) (int64, error)
}

type Subscriptions interface {
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
	// InsertSubscription fails with apperr.ErrConflict when the pair exists.
	InsertSubscription(ctx context.Context, s *models.Subscription) error
	DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.UserSummary, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error)
}

type Playlists interface {
	CreatePlaylist(ctx context.Context, p *models.Playlist) error
	// GetPlaylist returns the playlist with its video ids in playlist order.
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	GetPlaylistDetail(ctx context.Context, id string) (*models.PlaylistDetail, error)
	ListUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error)
	UpdatePlaylist(ctx context.Context, p *models.Playlist) error
	DeletePlaylist(ctx context.Context, id string) error
	// AddPlaylistVideo appends videoID; it fails with apperr.ErrConflict when
	// the video is already a member.
	AddPlaylistVideo(ctx context.Context, playlistID, videoID string) error
	RemovePlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error)
}

type Tweets interface {
	CreateTweet(ctx context.Context, t *models.Tweet) error
	GetTweet(ctx context.Context, id string) (*models.Tweet, error)
	UpdateTweet(ctx context.Context, t *models.Tweet) error
	// DeleteTweet removes the tweet and the likes on it.
	DeleteTweet(ctx context.Context, id string) error
	// ListUserTweets lists userID's tweets newest first, enriched for viewerID.
	ListUserTweets(ctx context.Context, userID, viewerID string) ([]models.TweetView, error)
}

type Dashboard interface {
	ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error)
}

// Store is the full persistence surface.
type Store interface {
	Users
	Videos
	Comments
	Likes
	Subscriptions
	Playlists
	Tweets
	Dashboard
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
