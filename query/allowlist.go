package query

import (
	"fmt"
	"sort"
	"strings"
)

// SortField is a canonical, store-independent name of a sortable field.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortDuration  SortField = "duration"
)

// Projection names used by the stores.
const (
	ProjVideoSummary = "videoSummary"
	ProjVideoDetail  = "videoDetail"
	ProjCommentFeed  = "commentFeed"
	ProjTweetFeed    = "tweetFeed"
	ProjUserSummary  = "userSummary"
)

// Allowlist is the single place that decides what clients may sort on and
// which fields a read may emit. It is static data, versioned, and checked by
// Validate at startup.
type Allowlist struct {
	Version         int
	SortTypes       []string
	VideoSortFields map[string]SortField
	DefaultSortBy   string
	DefaultSortType string
	DefaultLimit    int64
	MaxLimit        int64
	Projections     map[string][]string
}

// sensitiveFields may never appear as the leaf of a projected path.
var sensitiveFields = []string{"password", "passwordhash", "password_hash", "refreshtoken", "refresh_token"}

// Default is the allow-list the service runs with.
var Default = Allowlist{
	Version:   1,
	SortTypes: []string{"asc", "desc"},
	VideoSortFields: map[string]SortField{
		"createdat": SortCreatedAt,
		"duration":  SortDuration,
	},
	DefaultSortBy:   "createdAt",
	DefaultSortType: "desc",
	DefaultLimit:    10,
	MaxLimit:        100,
	Projections: map[string][]string{
		ProjVideoSummary: {
			"_id", "title", "thumbnail", "duration", "views", "isPublished", "createdAt",
			"owner._id", "owner.userName", "owner.avatar",
		},
		ProjVideoDetail: {
			"_id", "videoFile", "thumbnail", "title", "description", "duration", "views",
			"isPublished", "encodingStatus", "createdAt", "updatedAt",
			"owner._id", "owner.userName", "owner.avatar",
		},
		ProjCommentFeed: {
			"_id", "content", "createdAt",
			"owner._id", "owner.userName", "owner.avatar",
			"video._id", "video.title", "liked",
		},
		ProjTweetFeed: {
			"_id", "content", "createdAt", "updatedAt",
			"owner._id", "owner.userName", "owner.avatar",
			"likeCount", "liked",
		},
		ProjUserSummary: {"_id", "userName", "avatar"},
	},
}

// Validate rejects an allow-list that is incomplete or that would expose a
// credential field.
func (a Allowlist) Validate() error {
	if a.Version <= 0 {
		return fmt.Errorf("allowlist: version must be positive")
	}
	if len(a.SortTypes) == 0 {
		return fmt.Errorf("allowlist: no sort types")
	}
	for _, st := range a.SortTypes {
		if st != "asc" && st != "desc" {
			return fmt.Errorf("allowlist: unsupported sort type %q", st)
		}
	}
	if len(a.VideoSortFields) == 0 {
		return fmt.Errorf("allowlist: no sortable video fields")
	}
	for key := range a.VideoSortFields {
		if key != strings.ToLower(key) {
			return fmt.Errorf("allowlist: sort field key %q must be lower case", key)
		}
	}
	if _, ok := a.VideoSortFields[strings.ToLower(a.DefaultSortBy)]; !ok {
		return fmt.Errorf("allowlist: default sort field %q is not allowed", a.DefaultSortBy)
	}
	if !a.allowsSortType(a.DefaultSortType) {
		return fmt.Errorf("allowlist: default sort type %q is not allowed", a.DefaultSortType)
	}
	if a.DefaultLimit <= 0 || a.MaxLimit < a.DefaultLimit {
		return fmt.Errorf("allowlist: invalid limits default=%d max=%d", a.DefaultLimit, a.MaxLimit)
	}
	for _, name := range []string{ProjVideoSummary, ProjVideoDetail, ProjCommentFeed, ProjTweetFeed, ProjUserSummary} {
		if len(a.Projections[name]) == 0 {
			return fmt.Errorf("allowlist: projection %q missing", name)
		}
	}
	for name, fields := range a.Projections {
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			if seen[f] {
				return fmt.Errorf("allowlist: projection %q lists %q twice", name, f)
			}
			seen[f] = true
			leaf := strings.ToLower(f[strings.LastIndex(f, ".")+1:])
			for _, s := range sensitiveFields {
				if leaf == s {
					return fmt.Errorf("allowlist: projection %q exposes sensitive field %q", name, f)
				}
			}
		}
	}
	return nil
}

// Projection returns the field paths of a named projection.
func (a Allowlist) Projection(name string) []string {
	return a.Projections[name]
}

func (a Allowlist) allowsSortType(s string) bool {
	for _, st := range a.SortTypes {
		if st == s {
			return true
		}
	}
	return false
}

func (a Allowlist) sortFieldNames() []string {
	names := make([]string, 0, len(a.VideoSortFields))
	for _, f := range a.VideoSortFields {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
