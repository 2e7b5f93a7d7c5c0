package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"moviemate/config"
	_ "moviemate/docs"
	"moviemate/internal/delivery/http/controllers"
	"moviemate/internal/delivery/http/helpers"
	"moviemate/internal/delivery/http/live"
	"moviemate/internal/delivery/http/middleware"
)

// RouterDeps groups what NewRouter needs beyond the controller.
type RouterDeps struct {
	Logger      *slog.Logger
	Live        *live.Hub
	CORSOrigins []string
	RateLimit   config.RateLimitConfig
	// Bucket may be nil, which disables rate limiting.
	Bucket middleware.TokenBucket
}

// NewRouter initializes the HTTP router with all application routes and wraps it
// in the middleware chain.
func NewRouter(wp *controllers.WatchPartyController, deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Watch parties
	mux.HandleFunc("POST /watch-parties/{$}", wp.CreateWatchParty)
	mux.HandleFunc("GET /watch-parties/{$}", wp.ListWatchParties)
	mux.HandleFunc("GET /watch-parties/movie/{movieID}", wp.ListMovieWatchParties)
	mux.HandleFunc("GET /watch-parties/invites/{token}", wp.ResolveInvite)
	mux.HandleFunc("GET /watch-parties/{partyID}", wp.GetWatchParty)
	mux.HandleFunc("PUT /watch-parties/{partyID}", wp.UpdateWatchParty)
	mux.HandleFunc("DELETE /watch-parties/{partyID}", wp.DeleteWatchParty)
	mux.HandleFunc("POST /watch-parties/{partyID}/finalize", wp.FinalizeWatchParty)
	mux.HandleFunc("POST /watch-parties/{partyID}/participants", wp.AddParticipant)
	mux.HandleFunc("POST /watch-parties/{partyID}/votes", wp.CastVote)
	// Per-party GET views share one pattern; separate ones would overlap
	// /watch-parties/movie/{movieID} and /watch-parties/invites/{token}.
	mux.Handle("GET /watch-parties/{partyID}/{view}", partyViews(map[string]http.HandlerFunc{
		"availability": wp.GetAvailability,
		"best-time":    wp.GetBestTime,
		"live":         liveHandler(deps.Live),
	}))

	// Operations
	mux.HandleFunc("GET /health", health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var h http.Handler = mux
	h = middleware.RateLimit(deps.Bucket, deps.RateLimit, deps.Logger, h)
	h = middleware.CORS(deps.CORSOrigins, h)
	h = middleware.LoggingMiddleware(deps.Logger, h)
	h = middleware.RequestID(h)
	return h
}

func partyViews(views map[string]http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view, ok := views[r.PathValue("view")]
		if !ok {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "route not found")
			return
		}
		view(w, r)
	})
}

func liveHandler(hub *live.Hub) http.HandlerFunc {
	if hub == nil {
		return func(w http.ResponseWriter, r *http.Request) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "live updates are disabled")
		}
	}
	return hub.ServeWS
}

// health godoc
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func health(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": config.ServiceName})
}
