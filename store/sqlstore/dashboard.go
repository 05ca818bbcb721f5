package sqlstore

import (
	"context"

	"github.com/pkg/errors"

	"vidtube/models"
)

func (s *Store) ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	st := models.ChannelStats{ChannelID: channelID}
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM videos WHERE owner_id = ?),
			(SELECT CAST(COALESCE(SUM(views), 0) AS BIGINT) FROM videos WHERE owner_id = ?),
			(SELECT COUNT(*) FROM likes l JOIN videos v ON l.target_type = 'video' AND v.id = l.target_id WHERE v.owner_id = ?),
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id = ?)`,
		channelID, channelID, channelID, channelID,
	).Scan(&st.TotalVideos, &st.TotalViews, &st.TotalLikes, &st.TotalSubscribers)
	if err != nil {
		return nil, errors.Wrap(err, "channel stats")
	}
	return &st, nil
}
