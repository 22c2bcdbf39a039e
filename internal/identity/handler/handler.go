package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smartbin/internal/identity/models"
	"smartbin/internal/identity/service"
	dErrors "smartbin/pkg/domain-errors"
	"smartbin/pkg/platform/httputil"
	authmw "smartbin/pkg/platform/middleware/auth"
	"smartbin/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Signup(ctx context.Context, req service.SignupRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error)
	Me(ctx context.Context, identityID string) (*models.Identity, error)
}

// CookieConfig controls the session cookie set on signup and login.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

type Handler struct {
	identities Service
	logger     *slog.Logger
	cookie     CookieConfig
}

func New(identities Service, logger *slog.Logger, cookie CookieConfig) *Handler {
	return &Handler{identities: identities, logger: logger, cookie: cookie}
}

// RegisterPublic mounts the routes that need no credential.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/api/auth/signup", h.HandleSignup)
	r.Post("/api/auth/login", h.HandleLogin)
	r.Post("/api/auth/logout", h.HandleLogout)
}

// RegisterAuthenticated mounts the routes that expect RequireAuth upstream.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/api/auth/me", h.HandleMe)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalPoints int    `json:"totalPoints"`
}

type authResponse struct {
	User  userSummary `json:"user"`
	Token string      `json:"token"`
}

type meResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	TotalPoints int                `json:"totalPoints"`
	Role        models.Role        `json:"role"`
	ScanHistory []models.ScanEvent `json:"scanHistory"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req signupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.warn(ctx, "invalid signup request", err)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.identities.Signup(ctx, service.SignupRequest(req))
	if err != nil {
		h.fail(ctx, "signup failed", err)
		httputil.WriteError(w, err)
		return
	}
	h.writeSession(w, res)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.warn(ctx, "invalid login request", err)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.identities.Login(ctx, service.LoginRequest(req))
	if err != nil {
		h.fail(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}
	h.writeSession(w, res)
}

// HandleLogout only clears the cookie; issued tokens stay valid until expiry.
func (h *Handler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identityID := requestcontext.IdentityID(ctx)
	if identityID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
		return
	}

	identity, err := h.identities.Me(ctx, identityID)
	if err != nil {
		h.fail(ctx, "me failed", err)
		httputil.WriteError(w, err)
		return
	}
	history := identity.ScanHistory
	if history == nil {
		history = []models.ScanEvent{}
	}
	httputil.WriteJSON(w, http.StatusOK, meResponse{
		ID:          identity.ID,
		Name:        identity.Name,
		Email:       identity.Email,
		TotalPoints: identity.TotalPoints,
		Role:        identity.Role,
		ScanHistory: history,
	})
}

func (h *Handler) writeSession(w http.ResponseWriter, res *service.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.CookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, authResponse{
		User: userSummary{
			ID:          res.Identity.ID,
			Name:        res.Identity.Name,
			Email:       res.Identity.Email,
			TotalPoints: res.Identity.TotalPoints,
		},
		Token: res.Token,
	})
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}

func (h *Handler) fail(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	h.warn(ctx, msg, err)
}
