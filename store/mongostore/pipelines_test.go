package mongostore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/models"
	"vidtube/query"
)

func stageNames(p []bson.D) []string {
	out := make([]string, 0, len(p))
	for _, st := range p {
		out = append(out, st[0].Key)
	}
	return out
}

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func TestProjectStage_AllowListOnly(t *testing.T) {
	st, err := projectStage(query.Default, query.ProjVideoSummary)
	require.NoError(t, err)
	require.Equal(t, "$project", st[0].Key)
	proj := st[0].Value.(bson.D)

	var keys []string
	for _, e := range proj {
		keys = append(keys, e.Key)
	}
	assert.ElementsMatch(t, query.Default.Projection(query.ProjVideoSummary), keys)
	assert.NotContains(t, keys, "owner.password")
	assert.NotContains(t, keys, "videoHandle")
}

func TestProjectStage_ComputedFields(t *testing.T) {
	st, err := projectStage(query.Default, query.ProjCommentFeed)
	require.NoError(t, err)
	liked, ok := lookup(st[0].Value.(bson.D), "liked")
	require.True(t, ok)
	assert.Equal(t, computedFields["liked"], liked)
}

func TestProjectStage_ExcludesIDWhenNotListed(t *testing.T) {
	al := query.Default
	al.Projections = map[string][]string{query.ProjUserSummary: {"userName"}}
	st, err := projectStage(al, query.ProjUserSummary)
	require.NoError(t, err)
	id, ok := lookup(st[0].Value.(bson.D), "_id")
	require.True(t, ok)
	assert.Equal(t, 0, id)

	_, err = projectStage(al, query.ProjVideoDetail)
	assert.Error(t, err)
}

func TestVideoListPipeline_Shape(t *testing.T) {
	owner := primitive.NewObjectID()
	spec := query.VideoListSpec{
		Filter: query.VideoFilter{PublishedOnly: true, OwnerID: owner.Hex(), Text: "a.b*"},
		Sort:   query.Sort{Field: query.SortDuration, Dir: query.Asc},
		Page:   3, Limit: 5,
	}
	proj, _ := projectStage(query.Default, query.ProjVideoSummary)
	p, ok, err := videoListPipeline(spec, proj)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"$match", "$sort", "$facet"}, stageNames(p))

	match := p[0][0].Value.(bson.D)
	pub, _ := lookup(match, "isPublished")
	assert.Equal(t, true, pub)
	own, _ := lookup(match, "owner")
	assert.Equal(t, owner, own)
	or, ok := lookup(match, "$or")
	require.True(t, ok)
	re := or.(bson.A)[0].(bson.D)[0].Value.(primitive.Regex)
	assert.Equal(t, `a\.b\*`, re.Pattern, "search text is quoted")
	assert.Equal(t, "i", re.Options)

	sort := p[1][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "duration", Value: 1}, {Key: "_id", Value: 1}}, sort)

	facet := p[2][0].Value.(bson.D)
	items, _ := lookup(facet, "items")
	stages := items.(bson.A)
	require.Len(t, stages, 5)
	assert.Equal(t, bson.D{{Key: "$skip", Value: int64(10)}}, stages[0])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(5)}}, stages[1])
	assert.Equal(t, "$lookup", stages[2].(bson.D)[0].Key, "owner is joined after paging")
	assert.Equal(t, "$unwind", stages[3].(bson.D)[0].Key)
	assert.Equal(t, proj, stages[4])
}

func TestVideoListPipeline_HugePageSkipsEverything(t *testing.T) {
	spec := query.VideoListSpec{
		Sort: query.Sort{Field: query.SortCreatedAt, Dir: query.Desc}, Page: 92233720368547760, Limit: 100,
	}
	p, ok, err := videoListPipeline(spec, bson.D{})
	require.NoError(t, err)
	require.True(t, ok)
	facet := p[2][0].Value.(bson.D)
	items, _ := lookup(facet, "items")
	assert.Equal(t, bson.D{{Key: "$skip", Value: int64(math.MaxInt64)}}, items.(bson.A)[0])
}

func TestVideoListPipeline_MalformedOwnerMatchesNothing(t *testing.T) {
	spec := query.VideoListSpec{
		Filter: query.VideoFilter{OwnerID: "not-hex"},
		Sort:   query.Sort{Field: query.SortCreatedAt, Dir: query.Desc}, Page: 1, Limit: 10,
	}
	_, ok, err := videoListPipeline(spec, bson.D{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVideoListPipeline_RejectsUnknownSort(t *testing.T) {
	spec := query.VideoListSpec{Sort: query.Sort{Field: "views", Dir: query.Desc}, Page: 1, Limit: 10}
	_, _, err := videoListPipeline(spec, bson.D{})
	assert.Error(t, err)
}

func TestCommentFeedPipeline_JoinsViewerLikeAfterPaging(t *testing.T) {
	video, viewer := primitive.NewObjectID(), primitive.NewObjectID()
	proj, _ := projectStage(query.Default, query.ProjCommentFeed)
	p := commentFeedPipeline(video, viewer, query.Pagination{Page: 1, Limit: 10}, proj)
	assert.Equal(t, []string{"$match", "$sort", "$facet"}, stageNames(p))

	facet := p[2][0].Value.(bson.D)
	items, _ := lookup(facet, "items")
	var names []string
	for _, st := range items.(bson.A) {
		names = append(names, st.(bson.D)[0].Key)
	}
	assert.Equal(t, []string{"$skip", "$limit", "$lookup", "$unwind", "$lookup", "$unwind", "$lookup", "$project"}, names)

	likes := items.(bson.A)[6].(bson.D)[0].Value.(bson.D)
	as, _ := lookup(likes, "as")
	assert.Equal(t, "viewerLikes", as)
	from, _ := lookup(likes, "from")
	assert.Equal(t, colLikes, from)
}

func TestViewerLikes_Anonymous(t *testing.T) {
	st := viewerLikes(models.TargetComment, primitive.NilObjectID)
	assert.Equal(t, "$addFields", st[0].Key)
}

func TestTweetFeedPipeline_CountsAndViewer(t *testing.T) {
	proj, _ := projectStage(query.Default, query.ProjTweetFeed)
	p := tweetFeedPipeline(primitive.NewObjectID(), primitive.NewObjectID(), proj)
	assert.Equal(t, []string{"$match", "$sort", "$lookup", "$unwind", "$lookup", "$lookup", "$project"}, stageNames(p))
	count, ok := lookup(p[6][0].Value.(bson.D), "likeCount")
	require.True(t, ok)
	assert.Equal(t, computedFields["likeCount"], count)
}

func TestLikedVideosPipeline_DropsOthersDrafts(t *testing.T) {
	user := primitive.NewObjectID()
	p := likedVideosPipeline(user, bson.D{{Key: "$project", Value: bson.D{}}})
	assert.Equal(t, []string{"$match", "$sort", "$lookup", "$unwind", "$replaceRoot", "$match", "$lookup", "$unwind", "$project"}, stageNames(p))
}

func TestParseID(t *testing.T) {
	_, err := parseID("zzz", "Video")
	assert.Error(t, err)
	oid := primitive.NewObjectID()
	got, err := parseID(oid.Hex(), "Video")
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	id := ""
	n := newID(&id)
	assert.Equal(t, n.Hex(), id)
}
