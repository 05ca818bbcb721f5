package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"vidtube/apperr"
	"vidtube/jobs"
	"vidtube/media"
	"vidtube/models"
	"vidtube/query"
)

type PublishVideoInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"required,max=5000"`
	VideoFile   *media.LocalFile `json:"videoFile" validate:"required"`
	Thumbnail   *media.LocalFile `json:"thumbnail" validate:"required"`
}

// UpdateVideoInput changes only the fields that are set.
type UpdateVideoInput struct {
	Title       *string          `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string          `json:"description" validate:"omitnil,min=1,max=5000"`
	Thumbnail   *media.LocalFile `json:"-"`
}

// ListPublishedVideos is the public feed. A page past the last one is a
// client error.
func (s *Service) ListPublishedVideos(ctx context.Context, p query.Params) (models.Page[models.VideoSummary], error) {
	spec, err := s.al.PublishedFeed(p)
	if err != nil {
		return models.Page[models.VideoSummary]{}, err
	}
	items, total, err := s.store.ListVideos(ctx, spec)
	if err != nil {
		return models.Page[models.VideoSummary]{}, err
	}
	if spec.Page > models.TotalPages(total, spec.Limit) {
		return models.Page[models.VideoSummary]{}, apperr.Validation("Requested page exceeds total pages.")
	}
	return models.NewPage(items, spec.Page, spec.Limit, total), nil
}

// ListOwnVideos lists the caller's videos in any publish state. A page past
// the last one is returned empty.
func (s *Service) ListOwnVideos(ctx context.Context, callerID string, p query.Params) (models.Page[models.VideoSummary], error) {
	if callerID == "" {
		return models.Page[models.VideoSummary]{}, apperr.Unauthorized("Unauthorized request")
	}
	spec, err := s.al.OwnVideos(p, callerID)
	if err != nil {
		return models.Page[models.VideoSummary]{}, err
	}
	items, total, err := s.store.ListVideos(ctx, spec)
	if err != nil {
		return models.Page[models.VideoSummary]{}, err
	}
	return models.NewPage(items, spec.Page, spec.Limit, total), nil
}

// GetVideo returns the enriched detail of a video. Unpublished videos exist
// only for their owner.
func (s *Service) GetVideo(ctx context.Context, callerID, videoID string) (*models.VideoDetail, error) {
	videoID, err := requireID(videoID, "Video")
	if err != nil {
		return nil, err
	}
	d, err := s.store.GetVideoDetail(ctx, videoID, callerID)
	if err != nil {
		return nil, err
	}
	if !d.IsPublished && d.Owner.ID != callerID {
		return nil, apperr.NotFound("Video not found")
	}
	return d, nil
}

// visibleVideo loads a video the caller may see.
func (s *Service) visibleVideo(ctx context.Context, callerID, videoID string) (*models.Video, error) {
	videoID, err := requireID(videoID, "Video")
	if err != nil {
		return nil, err
	}
	v, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !v.IsPublished && v.Owner != callerID {
		return nil, apperr.NotFound("Video not found")
	}
	return v, nil
}

// ownedVideo loads a video and checks that the caller owns it.
func (s *Service) ownedVideo(ctx context.Context, callerID, videoID, action string) (*models.Video, error) {
	videoID, err := requireID(videoID, "Video")
	if err != nil {
		return nil, err
	}
	v, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := authorize(v.Owner, callerID, action); err != nil {
		return nil, err
	}
	return v, nil
}

// PublishVideo uploads the video and its thumbnail and records them. If any
// step fails, assets already uploaded are deleted before the error is
// returned. PublishVideo takes ownership of the spooled files.
func (s *Service) PublishVideo(ctx context.Context, callerID string, in PublishVideoInput) (*models.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if callerID == "" {
		media.Discard(in.VideoFile, in.Thumbnail)
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	if err := check(in, "Video file, thumbnail, title and description are required"); err != nil {
		media.Discard(in.VideoFile, in.Thumbnail)
		return nil, err
	}

	videoAsset, err := s.media.Upload(ctx, *in.VideoFile, media.KindVideo)
	if err != nil {
		media.Discard(in.Thumbnail)
		return nil, err
	}
	thumbAsset, err := s.media.Upload(ctx, *in.Thumbnail, media.KindImage)
	if err != nil {
		s.discardAsset(ctx, videoAsset.DeleteHandle, media.KindVideo)
		return nil, err
	}

	duration := videoAsset.Duration
	if duration < 0 {
		duration = 0
	}
	v := &models.Video{
		Owner:          callerID,
		VideoFile:      videoAsset.URL,
		Thumbnail:      thumbAsset.URL,
		Title:          in.Title,
		Description:    in.Description,
		Duration:       duration,
		IsPublished:    true,
		EncodingStatus: models.EncodingPending,
		Storage:        models.StorageRefs{Video: videoAsset.DeleteHandle, Thumbnail: thumbAsset.DeleteHandle},
	}
	if err := s.store.CreateVideo(ctx, v); err != nil {
		s.discardAsset(ctx, videoAsset.DeleteHandle, media.KindVideo)
		s.discardAsset(ctx, thumbAsset.DeleteHandle, media.KindImage)
		return nil, err
	}

	s.enqueueTranscode(ctx, v.ID)
	return v, nil
}

// enqueueTranscode schedules encoding. The video is already recorded, so a
// queue failure is logged and the video stays pending.
func (s *Service) enqueueTranscode(ctx context.Context, videoID string) {
	if s.queue == nil {
		return
	}
	job := jobs.NewTranscodeJob(videoID)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"video": videoID, "job": job.ID}).Error("failed to enqueue transcode job")
	}
}

// UpdateVideo changes title, description or thumbnail. A replaced thumbnail
// is deleted from the media store after the record is saved.
func (s *Service) UpdateVideo(ctx context.Context, callerID, videoID string, in UpdateVideoInput) (*models.Video, error) {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	if in.Title == nil && in.Description == nil && in.Thumbnail == nil {
		return nil, apperr.Validation("At least one of title, description, or thumbnail must be provided to update.")
	}
	if err := check(in, "Title and description cannot be empty"); err != nil {
		media.Discard(in.Thumbnail)
		return nil, err
	}

	v, err := s.ownedVideo(ctx, callerID, videoID, "update this video")
	if err != nil {
		media.Discard(in.Thumbnail)
		return nil, err
	}

	if in.Title != nil {
		v.Title = *in.Title
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	oldThumb := v.Storage.Thumbnail
	var newThumb string
	if in.Thumbnail != nil {
		asset, err := s.media.Upload(ctx, *in.Thumbnail, media.KindImage)
		if err != nil {
			return nil, err
		}
		newThumb = asset.DeleteHandle
		v.Thumbnail = asset.URL
		v.Storage.Thumbnail = asset.DeleteHandle
	}

	if err := s.store.UpdateVideo(ctx, v); err != nil {
		s.discardAsset(ctx, newThumb, media.KindImage)
		return nil, err
	}
	if newThumb != "" {
		s.discardAsset(ctx, oldThumb, media.KindImage)
	}
	return v, nil
}

// DeleteVideo removes the video's media and then its record. Media delete
// failures are logged and do not stop the record from being removed.
func (s *Service) DeleteVideo(ctx context.Context, callerID, videoID string) error {
	v, err := s.ownedVideo(ctx, callerID, videoID, "delete this video")
	if err != nil {
		return err
	}
	s.discardAsset(ctx, v.Storage.Video, media.KindVideo)
	s.discardAsset(ctx, v.Storage.Thumbnail, media.KindImage)
	return s.store.DeleteVideo(ctx, v.ID)
}

// TogglePublish flips the publish flag.
func (s *Service) TogglePublish(ctx context.Context, callerID, videoID string) (*models.Video, error) {
	v, err := s.ownedVideo(ctx, callerID, videoID, "toggle publish status of this video")
	if err != nil {
		return nil, err
	}
	v.IsPublished = !v.IsPublished
	if err := s.store.UpdateVideo(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
