package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventboard/docs"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
	"eventboard/internal/metrics"
)

// RouterConfig holds the HTTP-level settings of the router.
type RouterConfig struct {
	AllowedOrigins []string
	// RateLimit is the number of mutating requests allowed per client IP per minute. Zero disables it.
	RateLimit int
	// AssetsDir is served under /assets/ when media is stored on local disk. Empty disables it.
	AssetsDir string
}

// NewRouter initializes the HTTP router with all application routes and wraps it
// in the CORS, logging and metrics middleware.
func NewRouter(events *controllers.EventController, verifier domain.TokenVerifier, logger *slog.Logger, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier, logger)
	limit := rateLimiter(cfg.RateLimit)
	protected := func(h http.HandlerFunc) http.Handler {
		return limit(requireAuth(h))
	}

	// Public reads
	mux.HandleFunc("GET /events", events.ListEvents)
	mux.HandleFunc("GET /events/upcoming", events.ListUpcoming)
	mux.HandleFunc("GET /events/past", events.ListPast)
	mux.HandleFunc("GET /events/get/{id}", events.GetEvent)

	// Editor writes
	mux.Handle("POST /events/create", protected(events.CreateEvent))
	mux.Handle("PATCH /events/update/{id}", protected(events.UpdateEvent))
	// /events/{id}/upload-media and /events/{id}/delete-media overlap /events/update/{id},
	// so both go through one pattern.
	mux.Handle("PATCH /events/{id}/{op}", protected(mediaOps(events)))
	mux.Handle("DELETE /events/{id}", protected(events.DeleteEvent))

	if cfg.AssetsDir != "" {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", noDirListing(http.FileServer(http.Dir(cfg.AssetsDir)))))
	}

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.Metrics(handler)
	return handler
}

func mediaOps(events *controllers.EventController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("op") {
		case "upload-media":
			events.UploadMedia(w, r)
		case "delete-media":
			events.DeleteMedia(w, r)
		default:
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "route not found")
		}
	}
}

func rateLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			helpers.WriteJSONError(w, http.StatusTooManyRequests, helpers.ErrCodeTooManyRequests, "too many requests, slow down")
		}),
	)
}

// noDirListing answers 404 for directory paths instead of rendering an index.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
