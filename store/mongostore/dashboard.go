package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vidtube/models"
)

func (s *Store) ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	ch, err := parseID(channelID, "Channel")
	if err != nil {
		return nil, err
	}
	st := &models.ChannelStats{ChannelID: channelID}

	type agg struct {
		Videos int64                `bson:"videos"`
		Views  int64                `bson:"views"`
		IDs    []primitive.ObjectID `bson:"ids"`
	}
	rows, err := aggregateAll[agg](ctx, s.col(colVideos), mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: ch}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "videos", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "views", Value: bson.D{{Key: "$sum", Value: "$views"}}},
			{Key: "ids", Value: bson.D{{Key: "$push", Value: "$_id"}}},
		}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "channel video stats")
	}
	if len(rows) > 0 {
		st.TotalVideos, st.TotalViews = rows[0].Videos, rows[0].Views
		if len(rows[0].IDs) > 0 {
			st.TotalLikes, err = s.col(colLikes).CountDocuments(ctx, bson.D{
				{Key: "targetType", Value: string(models.TargetVideo)},
				{Key: "targetId", Value: bson.D{{Key: "$in", Value: rows[0].IDs}}},
			})
			if err != nil {
				return nil, errors.Wrap(err, "channel like stats")
			}
		}
	}
	if st.TotalSubscribers, err = s.col(colSubscriptions).CountDocuments(ctx, bson.D{{Key: "channel", Value: ch}}); err != nil {
		return nil, errors.Wrap(err, "channel subscriber stats")
	}
	return st, nil
}
