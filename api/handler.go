// Package api exposes the service over HTTP under /api/v1.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vidtube/auth"
	"vidtube/httputil"
	"vidtube/query"
	"vidtube/service"
)

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	Svc *service.Service
	// UploadDir is where multipart file parts are spooled before they are
	// handed to the media gateway.
	UploadDir      string
	MaxUploadBytes int64
	// SecureCookies marks the login cookie Secure.
	SecureCookies bool
}

// caller is the authenticated user id, or "" for anonymous requests.
func caller(r *http.Request) string {
	id, _ := auth.ExtractUserID(r)
	return id
}

func param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func listParams(r *http.Request) query.Params {
	q := r.URL.Query()
	return query.Params{
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		OwnerID:  q.Get("userId"),
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formValue returns a multipart field and whether it was sent at all.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	v, ok := r.MultipartForm.Value[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// releaseForm drops the temp files net/http keeps for a parsed form. Spooled
// copies handed to the service are unaffected.
func releaseForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

func (h *Handler) ok(w http.ResponseWriter, data any, msg string) {
	httputil.Respond(w, http.StatusOK, data, msg)
}

func (h *Handler) created(w http.ResponseWriter, data any, msg string) {
	httputil.Respond(w, http.StatusCreated, data, msg)
}
