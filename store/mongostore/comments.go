package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"vidtube/apperr"
	"vidtube/models"
	"vidtube/query"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	video, err := parseID(c.Video, "Video")
	if err != nil {
		return err
	}
	owner, err := parseID(c.Owner, "User")
	if err != nil {
		return err
	}
	now := s.stamp()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err = s.col(colComments).InsertOne(ctx, commentDoc{
		ID: newID(&c.ID), Video: video, Owner: owner, Content: c.Content, CreatedAt: now, UpdatedAt: now,
	})
	return convertErr(err, "Comment", "insert comment")
}

func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := parseID(id, "Comment")
	if err != nil {
		return nil, err
	}
	var d commentDoc
	if err := s.col(colComments).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return nil, convertErr(err, "Comment", "get comment")
	}
	return &models.Comment{
		ID: d.ID.Hex(), Video: d.Video.Hex(), Owner: d.Owner.Hex(), Content: d.Content,
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func (s *Store) UpdateComment(ctx context.Context, c *models.Comment) error {
	oid, err := parseID(c.ID, "Comment")
	if err != nil {
		return err
	}
	now := s.stamp()
	res, err := s.col(colComments).UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "content", Value: c.Content}, {Key: "updatedAt", Value: now}}}})
	if err != nil {
		return errors.Wrap(err, "update comment")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Comment not found")
	}
	c.UpdatedAt = now
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	oid, err := parseID(id, "Comment")
	if err != nil {
		return err
	}
	res, err := s.col(colComments).DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return errors.Wrap(err, "delete comment")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Comment not found")
	}
	_, err = s.col(colLikes).DeleteMany(ctx, bson.D{
		{Key: "targetType", Value: string(models.TargetComment)}, {Key: "targetId", Value: oid},
	})
	return errors.Wrap(err, "delete comment likes")
}

func (s *Store) ListVideoComments(ctx context.Context, videoID, viewerID string, pg query.Pagination) ([]models.CommentView, int64, error) {
	vid, err := parseID(videoID, "Video")
	if err != nil {
		return nil, 0, err
	}
	p := commentFeedPipeline(vid, optionalID(viewerID), pg, s.projCommentFeed)
	rows, total, err := aggregatePage[commentRow](ctx, s.col(colComments), p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list comments")
	}
	items := make([]models.CommentView, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.model())
	}
	return items, total, nil
}
