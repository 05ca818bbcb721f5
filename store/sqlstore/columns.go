package sqlstore

import "vidtube/models"

// Column expressions per projected field path. Aliases: v videos, u the
// owning user, c comments, t tweets, vl the viewer's like, lc like counts.

var userSummaryColumns = map[string]string{
	"_id":      "u.id",
	"userName": "u.username",
	"avatar":   "u.avatar",
}

var ownerColumns = map[string]string{
	"owner._id":      "u.id",
	"owner.userName": "u.username",
	"owner.avatar":   "u.avatar",
}

var videoSummaryColumns = merge(ownerColumns, map[string]string{
	"_id":         "v.id",
	"title":       "v.title",
	"thumbnail":   "v.thumbnail_url",
	"duration":    "v.duration",
	"views":       "v.views",
	"isPublished": "v.is_published",
	"createdAt":   "v.created_at",
})

var videoDetailColumns = merge(videoSummaryColumns, map[string]string{
	"videoFile":      "v.video_url",
	"description":    "v.description",
	"encodingStatus": "v.encoding_status",
	"updatedAt":      "v.updated_at",
})

var commentFeedColumns = merge(ownerColumns, map[string]string{
	"_id":         "c.id",
	"content":     "c.content",
	"createdAt":   "c.created_at",
	"video._id":   "v.id",
	"video.title": "v.title",
	"liked":       "(vl.id IS NOT NULL)",
})

var tweetFeedColumns = merge(ownerColumns, map[string]string{
	"_id":       "t.id",
	"content":   "t.content",
	"createdAt": "t.created_at",
	"updatedAt": "t.updated_at",
	"likeCount": "COALESCE(lc.n, 0)",
	"liked":     "(vl.id IS NOT NULL)",
})

func merge(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func bindOwner(o *models.UserSummary) map[string]any {
	return map[string]any{
		"owner._id":      &o.ID,
		"owner.userName": &o.Username,
		"owner.avatar":   &o.Avatar,
	}
}

func bindUserSummary(u *models.UserSummary) map[string]any {
	return map[string]any{"_id": &u.ID, "userName": &u.Username, "avatar": &u.Avatar}
}

func bindVideoSummary(v *models.VideoSummary) map[string]any {
	m := bindOwner(&v.Owner)
	m["_id"] = &v.ID
	m["title"] = &v.Title
	m["thumbnail"] = &v.Thumbnail
	m["duration"] = &v.Duration
	m["views"] = &v.Views
	m["isPublished"] = &v.IsPublished
	m["createdAt"] = ts(&v.CreatedAt)
	return m
}

func bindVideoDetail(v *models.VideoDetail) map[string]any {
	m := bindOwner(&v.Owner)
	m["_id"] = &v.ID
	m["videoFile"] = &v.VideoFile
	m["thumbnail"] = &v.Thumbnail
	m["title"] = &v.Title
	m["description"] = &v.Description
	m["duration"] = &v.Duration
	m["views"] = &v.Views
	m["isPublished"] = &v.IsPublished
	m["encodingStatus"] = &v.EncodingStatus
	m["createdAt"] = ts(&v.CreatedAt)
	m["updatedAt"] = ts(&v.UpdatedAt)
	return m
}

func bindCommentView(c *models.CommentView) map[string]any {
	m := bindOwner(&c.Owner)
	m["_id"] = &c.ID
	m["content"] = &c.Content
	m["createdAt"] = ts(&c.CreatedAt)
	m["video._id"] = &c.Video.ID
	m["video.title"] = &c.Video.Title
	m["liked"] = &c.Liked
	return m
}

func bindTweetView(t *models.TweetView) map[string]any {
	m := bindOwner(&t.Owner)
	m["_id"] = &t.ID
	m["content"] = &t.Content
	m["createdAt"] = ts(&t.CreatedAt)
	m["updatedAt"] = ts(&t.UpdatedAt)
	m["likeCount"] = &t.LikeCount
	m["liked"] = &t.Liked
	return m
}
