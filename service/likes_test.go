package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/apperr"
	"vidtube/models"
	"vidtube/store"
)

func TestToggleLike_NetStateFollowsParity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	v := f.video(t, a, "v", 10, true)
	c, err := f.svc.AddComment(ctx, b, v.ID, CommentInput{Content: "nice"})
	require.NoError(t, err)
	tw, err := f.svc.CreateTweet(ctx, a, TweetInput{Content: "hello"})
	require.NoError(t, err)

	targets := []models.LikeTarget{
		models.VideoTarget{VideoID: v.ID},
		models.CommentTarget{CommentID: c.ID},
		models.TweetTarget{TweetID: tw.ID},
	}
	for _, target := range targets {
		for i := 1; i <= 5; i++ {
			res, err := f.svc.ToggleLike(ctx, b, target)
			require.NoError(t, err)
			assert.Equal(t, i%2 == 1, res.Liked, "%s toggle %d", target.Kind(), i)
			if res.Liked {
				require.NotNil(t, res.Like)
				assert.Equal(t, b, res.Like.LikedBy)
			}
		}
		has, err := f.store.HasLike(ctx, models.LikeKey{UserID: b, Target: target})
		require.NoError(t, err)
		assert.True(t, has, "odd number of toggles leaves %s liked", target.Kind())
		n, err := f.store.CountLikes(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	}
}

func TestToggleLike_TargetsAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	v1 := f.video(t, a, "one", 10, true)
	v2 := f.video(t, a, "two", 10, true)

	_, err := f.svc.ToggleLike(ctx, a, models.VideoTarget{VideoID: v1.ID})
	require.NoError(t, err)

	liked, err := f.svc.LikedVideos(ctx, a)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, v1.ID, liked[0].ID)

	res, err := f.svc.ToggleLike(ctx, a, models.VideoTarget{VideoID: v2.ID})
	require.NoError(t, err)
	assert.True(t, res.Liked)
}

// racingLikes models a concurrent toggle that inserted the like between this
// toggle's delete and insert.
type racingLikes struct {
	store.Store
}

func (racingLikes) DeleteLike(context.Context, models.LikeKey) (bool, error) { return false, nil }

func TestToggleLike_DuplicateInsertMeansLiked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	v := f.video(t, a, "v", 10, true)
	target := models.VideoTarget{VideoID: v.ID}
	require.NoError(t, f.store.InsertLike(ctx, &models.Like{LikedBy: a, Target: target}))

	svc := f.withStore(racingLikes{f.store})
	res, err := svc.ToggleLike(ctx, a, target)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Nil(t, res.Like)

	n, err := f.store.CountLikes(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestToggleLike_MissingTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	draft := f.video(t, a, "draft", 10, false)

	for _, target := range []models.LikeTarget{
		models.VideoTarget{VideoID: "nope"},
		models.CommentTarget{CommentID: "nope"},
		models.TweetTarget{TweetID: "nope"},
		models.VideoTarget{VideoID: draft.ID},
	} {
		_, err := f.svc.ToggleLike(ctx, b, target)
		assert.ErrorIs(t, err, apperr.ErrNotFound, "%#v", target)
	}

	_, err := f.svc.ToggleLike(ctx, b, models.TweetTarget{TweetID: " "})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Tweet ID is required", err.Error())

	_, err = f.svc.ToggleLike(ctx, "", models.VideoTarget{VideoID: draft.ID})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.svc.ToggleLike(ctx, b, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestToggleLike_CommentOnDraftHiddenFromOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	draft := f.video(t, a, "draft", 10, false)
	c, err := f.svc.AddComment(ctx, a, draft.ID, CommentInput{Content: "note to self"})
	require.NoError(t, err)

	_, err = f.svc.ToggleLike(ctx, b, models.CommentTarget{CommentID: c.ID})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Comment not found", err.Error())

	res, err := f.svc.ToggleLike(ctx, a, models.CommentTarget{CommentID: c.ID})
	require.NoError(t, err)
	assert.True(t, res.Liked)
}

func TestTargetLookupsCoverEveryKind(t *testing.T) {
	f := newFixture(t)
	for _, k := range models.TargetKinds {
		assert.NotNil(t, f.svc.likeTargets[k], k)
	}
}

func TestLikedVideos_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	liked, err := f.svc.LikedVideos(context.Background(), a)
	require.NoError(t, err)
	assert.NotNil(t, liked)
	assert.Empty(t, liked)
}
