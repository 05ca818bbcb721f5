package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/apperr"
)

func TestDefaultAllowlistIsValid(t *testing.T) {
	require.NoError(t, Default.Validate())
}

func TestValidate_RejectsSensitiveProjection(t *testing.T) {
	al := Default
	al.Projections = map[string][]string{}
	for k, v := range Default.Projections {
		al.Projections[k] = v
	}
	al.Projections[ProjUserSummary] = []string{"_id", "userName", "password"}
	assert.Error(t, al.Validate())

	al.Projections[ProjUserSummary] = []string{"_id", "owner.refreshToken"}
	assert.Error(t, al.Validate())
}

func TestValidate_RejectsUnknownSortType(t *testing.T) {
	al := Default
	al.SortTypes = []string{"asc", "random"}
	assert.Error(t, al.Validate())
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page, limit string
		want        Pagination
		wantErr     bool
	}{
		{"", "", Pagination{1, 10}, false},
		{"3", "25", Pagination{3, 25}, false},
		{"0", "10", Pagination{}, true},
		{"1", "0", Pagination{}, true},
		{"abc", "10", Pagination{}, true},
		{"1", "NaN", Pagination{}, true},
		{"-2", "10", Pagination{}, true},
		{"1", "101", Pagination{}, true},
	}
	for _, tc := range tests {
		got, err := Default.ParsePagination(tc.page, tc.limit)
		if tc.wantErr {
			assert.ErrorIs(t, err, apperr.ErrValidation, "page=%q limit=%q", tc.page, tc.limit)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseSort(t *testing.T) {
	s, err := Default.ParseSort("", "")
	require.NoError(t, err)
	assert.Equal(t, Sort{SortCreatedAt, Desc}, s)

	s, err = Default.ParseSort("Duration", "ASC")
	require.NoError(t, err)
	assert.Equal(t, Sort{SortDuration, Asc}, s)

	s, err = Default.ParseSort("createdAt", "asc")
	require.NoError(t, err)
	assert.Equal(t, Sort{SortCreatedAt, Asc}, s)
}

func TestParseSort_RejectsUnlisted(t *testing.T) {
	for _, field := range []string{"views", "title", "owner", "password"} {
		_, err := Default.ParseSort(field, "asc")
		assert.ErrorIs(t, err, apperr.ErrValidation, field)
	}
	_, err := Default.ParseSort("duration", "sideways")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "asc, desc")
}

func TestPublishedFeed(t *testing.T) {
	spec, err := Default.PublishedFeed(Params{Query: " cats ", OwnerID: "u1", SortBy: "duration", SortType: "asc"})
	require.NoError(t, err)
	assert.True(t, spec.Filter.PublishedOnly)
	assert.Equal(t, "u1", spec.Filter.OwnerID)
	assert.Equal(t, "cats", spec.Filter.Text)
	assert.Equal(t, Sort{SortDuration, Asc}, spec.Sort)
}

func TestOwnVideos_ScopesToCaller(t *testing.T) {
	spec, err := Default.OwnVideos(Params{OwnerID: "someone-else"}, "me")
	require.NoError(t, err)
	assert.Equal(t, "me", spec.Filter.OwnerID)
	assert.False(t, spec.Filter.PublishedOnly)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%cats%", LikePattern("Cats"))
	assert.Equal(t, `%100\%\_done%`, LikePattern("100%_done"))
}
