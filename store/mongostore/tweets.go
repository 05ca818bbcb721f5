package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"vidtube/apperr"
	"vidtube/models"
)

func (s *Store) CreateTweet(ctx context.Context, t *models.Tweet) error {
	owner, err := parseID(t.Owner, "User")
	if err != nil {
		return err
	}
	now := s.stamp()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err = s.col(colTweets).InsertOne(ctx, tweetDoc{ID: newID(&t.ID), Owner: owner, Content: t.Content, CreatedAt: now, UpdatedAt: now})
	return convertErr(err, "Tweet", "insert tweet")
}

func (s *Store) GetTweet(ctx context.Context, id string) (*models.Tweet, error) {
	oid, err := parseID(id, "Tweet")
	if err != nil {
		return nil, err
	}
	var d tweetDoc
	if err := s.col(colTweets).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return nil, convertErr(err, "Tweet", "get tweet")
	}
	return &models.Tweet{ID: d.ID.Hex(), Owner: d.Owner.Hex(), Content: d.Content, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC()}, nil
}

func (s *Store) UpdateTweet(ctx context.Context, t *models.Tweet) error {
	oid, err := parseID(t.ID, "Tweet")
	if err != nil {
		return err
	}
	now := s.stamp()
	res, err := s.col(colTweets).UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "content", Value: t.Content}, {Key: "updatedAt", Value: now}}}})
	if err != nil {
		return errors.Wrap(err, "update tweet")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Tweet not found")
	}
	t.UpdatedAt = now
	return nil
}

func (s *Store) DeleteTweet(ctx context.Context, id string) error {
	oid, err := parseID(id, "Tweet")
	if err != nil {
		return err
	}
	res, err := s.col(colTweets).DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return errors.Wrap(err, "delete tweet")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Tweet not found")
	}
	_, err = s.col(colLikes).DeleteMany(ctx, bson.D{{Key: "targetType", Value: string(models.TargetTweet)}, {Key: "targetId", Value: oid}})
	return errors.Wrap(err, "delete tweet likes")
}

func (s *Store) ListUserTweets(ctx context.Context, userID, viewerID string) ([]models.TweetView, error) {
	uid, err := parseID(userID, "User")
	if err != nil {
		return nil, err
	}
	rows, err := aggregateAll[tweetRow](ctx, s.col(colTweets), tweetFeedPipeline(uid, optionalID(viewerID), s.projTweetFeed))
	if err != nil {
		return nil, errors.Wrap(err, "list tweets")
	}
	out := make([]models.TweetView, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}
