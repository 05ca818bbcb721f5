package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/apperr"
	"vidtube/models"
	"vidtube/query"
)

// newLiveStore connects to MONGO_TEST_URI with a throwaway database. Tests
// using it are skipped when the variable is unset.
func newLiveStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	name := fmt.Sprintf("vidtube_test_%d", time.Now().UnixNano())
	s, err := Connect(ctx, uri, name, query.Default)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestLive_FeedAndEnrichment(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()

	a := &models.User{Username: "alice", Email: "alice@example.com"}
	b := &models.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, s.CreateUser(ctx, a, "h"))
	require.NoError(t, s.CreateUser(ctx, b, "h"))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "alice", Email: "x@example.com"}, "h"), apperr.ErrConflict)

	for i, d := range []float64{30, 10, 20} {
		v := &models.Video{Owner: a.ID, Title: fmt.Sprintf("Video %d", i), Description: "cats", Duration: d, IsPublished: i != 1}
		require.NoError(t, s.CreateVideo(ctx, v))
	}

	items, total, err := s.ListVideos(ctx, query.VideoListSpec{
		Filter: query.VideoFilter{PublishedOnly: true, Text: "CATS"},
		Sort:   query.Sort{Field: query.SortDuration, Dir: query.Asc}, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Less(t, items[0].Duration, items[1].Duration)
	assert.Equal(t, "alice", items[0].Owner.Username)

	d, err := s.GetVideoDetail(ctx, items[0].ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, d.LikeCount)

	target := models.VideoTarget{VideoID: d.ID}
	require.NoError(t, s.InsertLike(ctx, &models.Like{LikedBy: b.ID, Target: target}))
	assert.ErrorIs(t, s.InsertLike(ctx, &models.Like{LikedBy: b.ID, Target: target}), apperr.ErrConflict)

	d, err = s.GetVideoDetail(ctx, items[0].ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.LikeCount)
	assert.True(t, d.IsLikedByUser)

	c := &models.Comment{Video: d.ID, Owner: a.ID, Content: "nice"}
	require.NoError(t, s.CreateComment(ctx, c))
	require.NoError(t, s.InsertLike(ctx, &models.Like{LikedBy: b.ID, Target: models.CommentTarget{CommentID: c.ID}}))
	feed, n, err := s.ListVideoComments(ctx, d.ID, b.ID, query.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Liked)

	p := &models.Playlist{Owner: a.ID, Name: "mix", Description: "d"}
	require.NoError(t, s.CreatePlaylist(ctx, p))
	require.NoError(t, s.AddPlaylistVideo(ctx, p.ID, d.ID))
	assert.ErrorIs(t, s.AddPlaylistVideo(ctx, p.ID, d.ID), apperr.ErrConflict)
	got, err := s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{d.ID}, got.Videos)

	require.NoError(t, s.DeleteVideo(ctx, d.ID))
	got, err = s.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Videos)
}
