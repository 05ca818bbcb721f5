package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/models"
)

// Collection names.
const (
	colUsers         = "users"
	colVideos        = "videos"
	colComments      = "comments"
	colLikes         = "likes"
	colPlaylists     = "playlists"
	colTweets        = "tweets"
	colSubscriptions = "subscriptions"
)

type userDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Username   string             `bson:"userName"`
	Email      string             `bson:"email"`
	FullName   string             `bson:"fullName"`
	Avatar     string             `bson:"avatar"`
	CoverImage string             `bson:"coverImage"`
	Password   string             `bson:"password"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

type videoDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	Owner           primitive.ObjectID `bson:"owner"`
	VideoFile       string             `bson:"videoFile"`
	VideoHandle     string             `bson:"videoHandle"`
	Thumbnail       string             `bson:"thumbnail"`
	ThumbnailHandle string             `bson:"thumbnailHandle"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	Duration        float64            `bson:"duration"`
	Views           int64              `bson:"views"`
	IsPublished     bool               `bson:"isPublished"`
	EncodingStatus  string             `bson:"encodingStatus"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Video     primitive.ObjectID `bson:"video"`
	Owner     primitive.ObjectID `bson:"owner"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type likeDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	LikedBy    primitive.ObjectID `bson:"likedBy"`
	TargetType string             `bson:"targetType"`
	TargetID   primitive.ObjectID `bson:"targetId"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type playlistDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Owner       primitive.ObjectID   `bson:"owner"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Videos      []primitive.ObjectID `bson:"videos"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type tweetDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Owner     primitive.ObjectID `bson:"owner"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type subscriptionDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// Pipeline output rows. Only fields named by a projection are populated.

type ownerRow struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"userName"`
	Avatar   string             `bson:"avatar"`
}

func (o ownerRow) model() models.UserSummary {
	return models.UserSummary{ID: hexOrEmpty(o.ID), Username: o.Username, Avatar: o.Avatar}
}

type videoRow struct {
	ID             primitive.ObjectID `bson:"_id"`
	VideoFile      string             `bson:"videoFile"`
	Thumbnail      string             `bson:"thumbnail"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description"`
	Duration       float64            `bson:"duration"`
	Views          int64              `bson:"views"`
	IsPublished    bool               `bson:"isPublished"`
	EncodingStatus string             `bson:"encodingStatus"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
	Owner          ownerRow           `bson:"owner"`
}

func (r videoRow) summary() models.VideoSummary {
	return models.VideoSummary{
		ID: hexOrEmpty(r.ID), Title: r.Title, Thumbnail: r.Thumbnail, Duration: r.Duration, Views: r.Views,
		IsPublished: r.IsPublished, CreatedAt: r.CreatedAt.UTC(), Owner: r.Owner.model(),
	}
}

func (r videoRow) detail() models.VideoDetail {
	return models.VideoDetail{
		ID: hexOrEmpty(r.ID), VideoFile: r.VideoFile, Thumbnail: r.Thumbnail, Title: r.Title,
		Description: r.Description, Duration: r.Duration, Views: r.Views, IsPublished: r.IsPublished,
		EncodingStatus: models.EncodingStatus(r.EncodingStatus), CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(), Owner: r.Owner.model(),
	}
}

type commentRow struct {
	ID        primitive.ObjectID `bson:"_id"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	Owner     ownerRow           `bson:"owner"`
	Video     struct {
		ID    primitive.ObjectID `bson:"_id"`
		Title string             `bson:"title"`
	} `bson:"video"`
	Liked bool `bson:"liked"`
}

func (r commentRow) model() models.CommentView {
	return models.CommentView{
		ID: hexOrEmpty(r.ID), Content: r.Content, CreatedAt: r.CreatedAt.UTC(), Owner: r.Owner.model(),
		Video: models.VideoRef{ID: hexOrEmpty(r.Video.ID), Title: r.Video.Title}, Liked: r.Liked,
	}
}

type tweetRow struct {
	ID        primitive.ObjectID `bson:"_id"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	Owner     ownerRow           `bson:"owner"`
	LikeCount int64              `bson:"likeCount"`
	Liked     bool               `bson:"liked"`
}

func (r tweetRow) model() models.TweetView {
	return models.TweetView{
		ID: hexOrEmpty(r.ID), Content: r.Content, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC(),
		Owner: r.Owner.model(), LikeCount: r.LikeCount, Liked: r.Liked,
	}
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
