package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/apperr"
	"vidtube/models"
)

func likeFilter(key models.LikeKey) (bson.D, bool) {
	user, err := primitive.ObjectIDFromHex(key.UserID)
	if err != nil {
		return nil, false
	}
	target, err := primitive.ObjectIDFromHex(key.Target.TargetID())
	if err != nil {
		return nil, false
	}
	return bson.D{
		{Key: "likedBy", Value: user},
		{Key: "targetType", Value: string(key.Target.Kind())},
		{Key: "targetId", Value: target},
	}, true
}

func (s *Store) InsertLike(ctx context.Context, l *models.Like) error {
	if l.Target == nil {
		return apperr.Validation("like target is required")
	}
	user, err := parseID(l.LikedBy, "User")
	if err != nil {
		return err
	}
	target, err := parseID(l.Target.TargetID(), string(l.Target.Kind()))
	if err != nil {
		return err
	}
	now := s.stamp()
	l.CreatedAt = now
	_, err = s.col(colLikes).InsertOne(ctx, likeDoc{
		ID: newID(&l.ID), LikedBy: user, TargetType: string(l.Target.Kind()), TargetID: target, CreatedAt: now,
	})
	return convertErr(err, "Like", "insert like")
}

func (s *Store) DeleteLike(ctx context.Context, key models.LikeKey) (bool, error) {
	f, ok := likeFilter(key)
	if !ok {
		return false, nil
	}
	res, err := s.col(colLikes).DeleteOne(ctx, f)
	if err != nil {
		return false, errors.Wrap(err, "delete like")
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) HasLike(ctx context.Context, key models.LikeKey) (bool, error) {
	f, ok := likeFilter(key)
	if !ok {
		return false, nil
	}
	n, err := s.col(colLikes).CountDocuments(ctx, f)
	return n > 0, errors.Wrap(err, "has like")
}

func (s *Store) CountLikes(ctx context.Context, target models.LikeTarget) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(target.TargetID())
	if err != nil {
		return 0, nil
	}
	n, err := s.col(colLikes).CountDocuments(ctx, bson.D{
		{Key: "targetType", Value: string(target.Kind())}, {Key: "targetId", Value: oid},
	})
	return n, errors.Wrap(err, "count likes")
}
