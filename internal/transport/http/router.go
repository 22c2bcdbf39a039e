// Package httptransport assembles the HTTP surface: middleware chain, public
// routes, authenticated routes and the admin group.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"smartbin/internal/identity/models"
	"smartbin/pkg/platform/httputil"
	authmw "smartbin/pkg/platform/middleware/auth"
	"smartbin/pkg/platform/middleware/metadata"
	"smartbin/pkg/platform/middleware/request"
	"smartbin/pkg/platform/middleware/requesttime"
)

// PublicRoutes mounts routes that need no credential.
type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

// AuthenticatedRoutes mounts routes that expect an authenticated identity.
type AuthenticatedRoutes interface {
	RegisterAuthenticated(r chi.Router)
}

// Routes is the common Register shape used by the ledger, ranking and admin handlers.
type Routes interface {
	Register(r chi.Router)
}

// Config lists everything the router needs. Metrics is optional.
type Config struct {
	Logger   *slog.Logger
	Verifier authmw.Authenticator
	Clock    requesttime.Clock
	Metrics  http.Handler
	// AllowedOrigins may send credentialed cross-origin requests.
	AllowedOrigins []string

	Identity interface {
		PublicRoutes
		AuthenticatedRoutes
	}
	Ledger      Routes
	Leaderboard Routes
	Admin       Routes
}

type statusResponse struct {
	Status string `json:"status"`
}

func NewRouter(cfg Config) http.Handler {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.WithClock(clock))
	r.Use(metadata.ClientMetadata)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", request.HeaderRequestID},
			ExposedHeaders:   []string{"Retry-After", request.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "Smart Dustbin API running"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	cfg.Identity.RegisterPublic(r)
	cfg.Leaderboard.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Verifier, cfg.Logger))
		cfg.Identity.RegisterAuthenticated(r)
		cfg.Ledger.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(cfg.Verifier, models.RoleAdmin.String(), cfg.Logger))
			cfg.Admin.Register(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not_found", ErrorDescription: "route not found"})
	})
	return r
}
