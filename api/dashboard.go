package api

import (
	"context"
	"net/http"
	"time"

	"vidtube/httputil"
)

func (h *Handler) HandleChannelStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.ChannelStats(r.Context(), param(r, "channelId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, st, "Channel stats fetched successfully")
}

// HandleHealthcheck reports 503 while the store is unreachable.
func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Svc.Ping(ctx); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorBody{
			StatusCode: http.StatusServiceUnavailable, Error: "store unavailable", Code: "SYS_503",
		})
		return
	}
	h.ok(w, map[string]string{"status": "ok"}, "OK")
}
