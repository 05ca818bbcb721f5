package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/apperr"
	"vidtube/logger"
	"vidtube/models"
	"vidtube/query"
)

func (s *Store) CreateVideo(ctx context.Context, v *models.Video) error {
	owner, err := parseID(v.Owner, "User")
	if err != nil {
		return err
	}
	if v.EncodingStatus == "" {
		v.EncodingStatus = models.EncodingPending
	}
	now := s.stamp()
	v.CreatedAt, v.UpdatedAt = now, now
	doc := videoDoc{
		ID: newID(&v.ID), Owner: owner, VideoFile: v.VideoFile, VideoHandle: v.Storage.Video,
		Thumbnail: v.Thumbnail, ThumbnailHandle: v.Storage.Thumbnail, Title: v.Title, Description: v.Description,
		Duration: v.Duration, Views: v.Views, IsPublished: v.IsPublished, EncodingStatus: string(v.EncodingStatus),
		CreatedAt: now, UpdatedAt: now,
	}
	_, err = s.col(colVideos).InsertOne(ctx, doc)
	return convertErr(err, "Video", "insert video")
}

func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	oid, err := parseID(id, "Video")
	if err != nil {
		return nil, err
	}
	var d videoDoc
	if err := s.col(colVideos).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return nil, convertErr(err, "Video", "get video")
	}
	return &models.Video{
		ID: d.ID.Hex(), Owner: d.Owner.Hex(), VideoFile: d.VideoFile, Thumbnail: d.Thumbnail, Title: d.Title,
		Description: d.Description, Duration: d.Duration, Views: d.Views, IsPublished: d.IsPublished,
		Storage:        models.StorageRefs{Video: d.VideoHandle, Thumbnail: d.ThumbnailHandle},
		EncodingStatus: models.EncodingStatus(d.EncodingStatus), CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func (s *Store) GetVideoDetail(ctx context.Context, id, viewerID string) (*models.VideoDetail, error) {
	oid, err := parseID(id, "Video")
	if err != nil {
		return nil, err
	}
	rows, err := aggregateAll[videoRow](ctx, s.col(colVideos), videoDetailPipeline(oid, s.projVideoDetail))
	if err != nil {
		return nil, errors.Wrap(err, "video detail")
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("Video not found")
	}
	d := rows[0].detail()

	target := models.VideoTarget{VideoID: d.ID}
	if d.LikeCount, err = s.CountLikes(ctx, target); err != nil {
		return nil, err
	}
	if viewerID == "" {
		return &d, nil
	}
	if d.IsLikedByUser, err = s.HasLike(ctx, models.LikeKey{UserID: viewerID, Target: target}); err != nil {
		return nil, err
	}
	if d.IsOwnerSubscribed, err = s.IsSubscribed(ctx, viewerID, d.Owner.ID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) UpdateVideo(ctx context.Context, v *models.Video) error {
	oid, err := parseID(v.ID, "Video")
	if err != nil {
		return err
	}
	now := s.stamp()
	res, err := s.col(colVideos).UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: v.Title},
		{Key: "description", Value: v.Description},
		{Key: "thumbnail", Value: v.Thumbnail},
		{Key: "thumbnailHandle", Value: v.Storage.Thumbnail},
		{Key: "isPublished", Value: v.IsPublished},
		{Key: "updatedAt", Value: now},
	}}})
	if err != nil {
		return errors.Wrap(err, "update video")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Video not found")
	}
	v.UpdatedAt = now
	return nil
}

// DeleteVideo removes the video first, then its dependents. MongoDB
// transactions need a replica set, so dependents are removed best effort and
// failures are logged.
func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	oid, err := parseID(id, "Video")
	if err != nil {
		return err
	}
	res, err := s.col(colVideos).DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return errors.Wrap(err, "delete video")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Video not found")
	}

	log := logger.L().WithField("videoId", id)
	commentIDs := []primitive.ObjectID{}
	cur, err := s.col(colComments).Find(ctx, bson.D{{Key: "video", Value: oid}})
	if err == nil {
		var docs []commentDoc
		if err = cur.All(ctx, &docs); err == nil {
			for _, c := range docs {
				commentIDs = append(commentIDs, c.ID)
			}
		}
	}
	if err != nil {
		log.WithError(err).Warn("listing comments of deleted video failed")
	}
	cleanups := []struct {
		name string
		run  func() error
	}{
		{"likes", func() error {
			_, err := s.col(colLikes).DeleteMany(ctx, bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "targetType", Value: string(models.TargetVideo)}, {Key: "targetId", Value: oid}},
				bson.D{{Key: "targetType", Value: string(models.TargetComment)}, {Key: "targetId", Value: bson.D{{Key: "$in", Value: commentIDs}}}},
			}}})
			return err
		}},
		{"comments", func() error {
			_, err := s.col(colComments).DeleteMany(ctx, bson.D{{Key: "video", Value: oid}})
			return err
		}},
		{"playlists", func() error {
			_, err := s.col(colPlaylists).UpdateMany(ctx,
				bson.D{{Key: "videos", Value: oid}},
				bson.D{{Key: "$pull", Value: bson.D{{Key: "videos", Value: oid}}}})
			return err
		}},
	}
	for _, c := range cleanups {
		if err := c.run(); err != nil {
			log.WithError(err).WithField("dependent", c.name).Warn("cleanup after video delete failed")
		}
	}
	return nil
}

func (s *Store) ListVideos(ctx context.Context, spec query.VideoListSpec) ([]models.VideoSummary, int64, error) {
	p, ok, err := videoListPipeline(spec, s.projVideoSummary)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return []models.VideoSummary{}, 0, nil
	}
	rows, total, err := aggregatePage[videoRow](ctx, s.col(colVideos), p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list videos")
	}
	items := make([]models.VideoSummary, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.summary())
	}
	return items, total, nil
}

func (s *Store) SetEncodingStatus(ctx context.Context, id string, st models.EncodingStatus) error {
	if !st.Valid() {
		return apperr.Validation("invalid encoding status %q", st)
	}
	oid, err := parseID(id, "Video")
	if err != nil {
		return err
	}
	res, err := s.col(colVideos).UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "encodingStatus", Value: string(st)},
		{Key: "updatedAt", Value: s.stamp()},
	}}})
	if err != nil {
		return errors.Wrap(err, "set encoding status")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Video not found")
	}
	return nil
}

func (s *Store) LikedVideos(ctx context.Context, userID string) ([]models.VideoSummary, error) {
	uid, err := parseID(userID, "User")
	if err != nil {
		return nil, err
	}
	rows, err := aggregateAll[videoRow](ctx, s.col(colLikes), likedVideosPipeline(uid, s.projVideoSummary))
	if err != nil {
		return nil, errors.Wrap(err, "liked videos")
	}
	items := make([]models.VideoSummary, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.summary())
	}
	return items, nil
}
