package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vidtube/models"
)

func (s *Store) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	sub, err1 := primitive.ObjectIDFromHex(subscriberID)
	ch, err2 := primitive.ObjectIDFromHex(channelID)
	if err1 != nil || err2 != nil {
		return false, nil
	}
	n, err := s.col(colSubscriptions).CountDocuments(ctx, bson.D{{Key: "subscriber", Value: sub}, {Key: "channel", Value: ch}})
	return n > 0, errors.Wrap(err, "is subscribed")
}

func (s *Store) InsertSubscription(ctx context.Context, sub *models.Subscription) error {
	subscriber, err := parseID(sub.Subscriber, "User")
	if err != nil {
		return err
	}
	channel, err := parseID(sub.Channel, "Channel")
	if err != nil {
		return err
	}
	now := s.stamp()
	sub.CreatedAt = now
	_, err = s.col(colSubscriptions).InsertOne(ctx, subscriptionDoc{
		ID: newID(&sub.ID), Subscriber: subscriber, Channel: channel, CreatedAt: now,
	})
	return convertErr(err, "Subscription", "insert subscription")
}

func (s *Store) DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	sub, err1 := primitive.ObjectIDFromHex(subscriberID)
	ch, err2 := primitive.ObjectIDFromHex(channelID)
	if err1 != nil || err2 != nil {
		return false, nil
	}
	res, err := s.col(colSubscriptions).DeleteOne(ctx, bson.D{{Key: "subscriber", Value: sub}, {Key: "channel", Value: ch}})
	if err != nil {
		return false, errors.Wrap(err, "delete subscription")
	}
	return res.DeletedCount > 0, nil
}

// subscriptionUsers joins the user on the other side of each subscription
// matching match.
func (s *Store) subscriptionUsers(ctx context.Context, match bson.D, userField string) ([]models.UserSummary, error) {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colUsers},
			{Key: "localField", Value: userField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$user"}}}},
		s.projUserSummary,
	}
	rows, err := aggregateAll[ownerRow](ctx, s.col(colSubscriptions), p)
	if err != nil {
		return nil, errors.Wrap(err, "subscription users")
	}
	out := make([]models.UserSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) ListSubscribers(ctx context.Context, channelID string) ([]models.UserSummary, error) {
	ch, err := parseID(channelID, "Channel")
	if err != nil {
		return nil, err
	}
	return s.subscriptionUsers(ctx, bson.D{{Key: "channel", Value: ch}}, "subscriber")
}

func (s *Store) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error) {
	sub, err := parseID(subscriberID, "User")
	if err != nil {
		return nil, err
	}
	return s.subscriptionUsers(ctx, bson.D{{Key: "subscriber", Value: sub}}, "channel")
}
