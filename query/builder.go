// Package query turns untrusted listing parameters into validated filter,
// sort and page specifications that the stores translate into queries.
package query

import (
	"strconv"
	"strings"

	"vidtube/apperr"
)

type Direction int

const (
	Asc  Direction = 1
	Desc Direction = -1
)

type Sort struct {
	Field SortField
	Dir   Direction
}

// Params are the raw query-string values of a listing request. Empty strings
// mean "not supplied".
type Params struct {
	Page     string
	Limit    string
	Query    string
	SortBy   string
	SortType string
	OwnerID  string
}

// VideoFilter restricts a video listing.
type VideoFilter struct {
	OwnerID       string
	PublishedOnly bool
	// Text matches title or description, case-insensitively, as a substring.
	Text string
}

type VideoListSpec struct {
	Filter VideoFilter
	Sort   Sort
	Page   int64
	Limit  int64
}

// Pagination is a validated page request.
type Pagination struct {
	Page  int64
	Limit int64
}

// ParsePagination validates page and limit. Missing values fall back to page
// 1 and the allow-list's default limit; anything that does not parse to a
// positive integer is rejected.
func (a Allowlist) ParsePagination(page, limit string) (Pagination, error) {
	p := Pagination{Page: 1, Limit: a.DefaultLimit}
	if page != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(page), 10, 64)
		if err != nil || n <= 0 {
			return p, apperr.Validation("Page and limit are required and must be positive integers")
		}
		p.Page = n
	}
	if limit != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(limit), 10, 64)
		if err != nil || n <= 0 {
			return p, apperr.Validation("Page and limit are required and must be positive integers")
		}
		if n > a.MaxLimit {
			return p, apperr.Validation("limit must not exceed %d", a.MaxLimit)
		}
		p.Limit = n
	}
	return p, nil
}

// ParseSort validates sortBy against the video sort allow-list and sortType
// against the sort-direction allow-list. Both are case-insensitive.
func (a Allowlist) ParseSort(sortBy, sortType string) (Sort, error) {
	if sortBy == "" {
		sortBy = a.DefaultSortBy
	}
	if sortType == "" {
		sortType = a.DefaultSortType
	}
	st := strings.ToLower(strings.TrimSpace(sortType))
	if !a.allowsSortType(st) {
		return Sort{}, apperr.Validation("Sort type must be one of %s", strings.Join(a.SortTypes, ", "))
	}
	field, ok := a.VideoSortFields[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		return Sort{}, apperr.Validation("Sort by must be one of %s", strings.Join(a.sortFieldNames(), ", "))
	}
	dir := Desc
	if st == "asc" {
		dir = Asc
	}
	return Sort{Field: field, Dir: dir}, nil
}

// PublishedFeed builds the spec for the public feed: only published videos,
// optionally narrowed to one owner.
func (a Allowlist) PublishedFeed(p Params) (VideoListSpec, error) {
	spec, err := a.videoList(p)
	if err != nil {
		return spec, err
	}
	spec.Filter.PublishedOnly = true
	spec.Filter.OwnerID = strings.TrimSpace(p.OwnerID)
	return spec, nil
}

// OwnVideos builds the spec for the caller's own videos regardless of publish
// state. Any owner filter in p is ignored.
func (a Allowlist) OwnVideos(p Params, callerID string) (VideoListSpec, error) {
	spec, err := a.videoList(p)
	if err != nil {
		return spec, err
	}
	spec.Filter.OwnerID = callerID
	return spec, nil
}

func (a Allowlist) videoList(p Params) (VideoListSpec, error) {
	pg, err := a.ParsePagination(p.Page, p.Limit)
	if err != nil {
		return VideoListSpec{}, err
	}
	order, err := a.ParseSort(p.SortBy, p.SortType)
	if err != nil {
		return VideoListSpec{}, err
	}
	return VideoListSpec{
		Filter: VideoFilter{Text: strings.TrimSpace(p.Query)},
		Sort:   order,
		Page:   pg.Page,
		Limit:  pg.Limit,
	}, nil
}

// LikePattern renders text as a SQL LIKE pattern matching it as a substring,
// escaping wildcards with a backslash.
func LikePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(text)) + "%"
}
