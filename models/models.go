// Package models holds the persisted entities and the enriched read views
// returned by the store layer. Views are explicit allow-lists: a field that is
// not declared here cannot be serialized to a client.
package models

import "time"

// User is the public projection of an account. Credentials live only in the
// store and are read through a dedicated lookup.
type User struct {
	ID         string    `json:"_id"`
	Username   string    `json:"userName"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserSummary is the owner block joined into videos, comments and tweets.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"userName"`
	Avatar   string `json:"avatar"`
}

type EncodingStatus string

const (
	EncodingPending    EncodingStatus = "pending"
	EncodingProcessing EncodingStatus = "processing"
	EncodingReady      EncodingStatus = "ready"
)

func (s EncodingStatus) Valid() bool {
	switch s {
	case EncodingPending, EncodingProcessing, EncodingReady:
		return true
	}
	return false
}

// StorageRefs are the media-store deletion handles for a video's assets.
type StorageRefs struct {
	Video     string `json:"-"`
	Thumbnail string `json:"-"`
}

type Video struct {
	ID             string         `json:"_id"`
	Owner          string         `json:"owner"`
	VideoFile      string         `json:"videoFile"`
	Thumbnail      string         `json:"thumbnail"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Duration       float64        `json:"duration"`
	Views          int64          `json:"views"`
	IsPublished    bool           `json:"isPublished"`
	Storage        StorageRefs    `json:"-"`
	EncodingStatus EncodingStatus `json:"encodingStatus"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// VideoSummary is one row of a paginated video feed.
type VideoSummary struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Thumbnail   string      `json:"thumbnail"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	Owner       UserSummary `json:"owner"`
}

// VideoDetail is a single video enriched relative to the viewer.
type VideoDetail struct {
	ID                string         `json:"_id"`
	VideoFile         string         `json:"videoFile"`
	Thumbnail         string         `json:"thumbnail"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Duration          float64        `json:"duration"`
	Views             int64          `json:"views"`
	IsPublished       bool           `json:"isPublished"`
	EncodingStatus    EncodingStatus `json:"encodingStatus"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	Owner             UserSummary    `json:"owner"`
	LikeCount         int64          `json:"likeCount"`
	IsLikedByUser     bool           `json:"isLikedByUser"`
	IsOwnerSubscribed bool           `json:"isOwnerSubscribed"`
}

type Comment struct {
	ID        string    `json:"_id"`
	Video     string    `json:"video"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VideoRef is the video block joined into a comment feed row.
type VideoRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// CommentView is one row of a video's comment feed.
type CommentView struct {
	ID        string      `json:"_id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	Owner     UserSummary `json:"owner"`
	Video     VideoRef    `json:"video"`
	Liked     bool        `json:"liked"`
}

type Tweet struct {
	ID        string    `json:"_id"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TweetView struct {
	ID        string      `json:"_id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Owner     UserSummary `json:"owner"`
	LikeCount int64       `json:"likeCount"`
	Liked     bool        `json:"liked"`
}

type Playlist struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Videos      []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistDetail is a playlist populated with its owner and videos, in
// playlist order.
type PlaylistDetail struct {
	ID          string         `json:"_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       UserSummary    `json:"owner"`
	Videos      []VideoSummary `json:"videos"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type Subscription struct {
	ID         string    `json:"_id"`
	Subscriber string    `json:"subscriber"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ChannelStats struct {
	ChannelID        string `json:"channelId"`
	TotalVideos      int64  `json:"totalVideos"`
	TotalViews       int64  `json:"totalViews"`
	TotalLikes       int64  `json:"totalLikes"`
	TotalSubscribers int64  `json:"totalSubscribers"`
}
