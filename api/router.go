package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"vidtube/apperr"
	"vidtube/auth"
	"vidtube/httputil"
	"vidtube/logger"
	"vidtube/ratelimit"
)

type RouterConfig struct {
	Auth           *auth.Middleware
	AllowedOrigins []string
	// Limiter is optional; without one requests are not rate limited.
	Limiter    ratelimit.Limiter
	RateWindow time.Duration
}

// NewRouter mounts every endpoint under /api/v1.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(logger.Access()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.Limiter != nil {
		r.Use(ratelimit.Middleware(cfg.Limiter, cfg.RateWindow, ratelimit.ByIP))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperr.NotFound("Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorBody{
			StatusCode: http.StatusMethodNotAllowed, Error: "Method not allowed", Code: "HTTP_405",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", h.HandleHealthcheck)

		r.Post("/users/register", h.HandleRegister)
		r.Post("/users/login", h.HandleLogin)
		r.With(cfg.Auth.Optional).Get("/videos/published", h.HandleListPublished)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.Require)

			r.Post("/users/logout", h.HandleLogout)
			r.Get("/users/me", h.HandleCurrentUser)

			r.Get("/videos", h.HandleListOwnVideos)
			r.Post("/videos", h.HandlePublishVideo)
			r.Get("/videos/{videoId}", h.HandleGetVideo)
			r.Patch("/videos/{videoId}", h.HandleUpdateVideo)
			r.Delete("/videos/{videoId}", h.HandleDeleteVideo)
			r.Patch("/videos/toggle/publish/{videoId}", h.HandleTogglePublish)

			r.Get("/comments/{videoId}", h.HandleListComments)
			r.Post("/comments/{videoId}", h.HandleAddComment)
			r.Patch("/comments/c/{commentId}", h.HandleUpdateComment)
			r.Delete("/comments/c/{commentId}", h.HandleDeleteComment)

			r.Post("/likes/toggle/v/{videoId}", h.HandleToggleVideoLike)
			r.Post("/likes/toggle/c/{commentId}", h.HandleToggleCommentLike)
			r.Post("/likes/toggle/t/{tweetId}", h.HandleToggleTweetLike)
			r.Get("/likes/videos", h.HandleLikedVideos)

			r.Post("/playlists", h.HandleCreatePlaylist)
			r.Get("/playlists/user/{userId}", h.HandleUserPlaylists)
			r.Get("/playlists/{playlistId}", h.HandleGetPlaylist)
			r.Patch("/playlists/{playlistId}", h.HandleUpdatePlaylist)
			r.Delete("/playlists/{playlistId}", h.HandleDeletePlaylist)
			r.Patch("/playlists/add/{videoId}/{playlistId}", h.HandleAddToPlaylist)
			r.Patch("/playlists/remove/{videoId}/{playlistId}", h.HandleRemoveFromPlaylist)

			r.Post("/tweets", h.HandleCreateTweet)
			r.Get("/tweets/user/{userId}", h.HandleUserTweets)
			r.Patch("/tweets/{tweetId}", h.HandleUpdateTweet)
			r.Delete("/tweets/{tweetId}", h.HandleDeleteTweet)

			r.Post("/subscriptions/c/{channelId}", h.HandleToggleSubscription)
			r.Get("/subscriptions/c/{channelId}", h.HandleChannelSubscribers)
			r.Get("/subscriptions/u/{subscriberId}", h.HandleSubscribedChannels)

			r.Get("/dashboard/stats/{channelId}", h.HandleChannelStats)
		})
	})
	return r
}
