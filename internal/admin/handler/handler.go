package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"smartbin/internal/admin"
	"smartbin/internal/identity/models"
	"smartbin/internal/ranking"
	dErrors "smartbin/pkg/domain-errors"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/httputil"
	"smartbin/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	ListUsers(ctx context.Context, actorID string) ([]admin.UserSummary, error)
	GetUser(ctx context.Context, actorID, id string) (*models.Identity, error)
	UpdateUser(ctx context.Context, actorID, id string, patch admin.Patch) (*models.Identity, error)
	DeleteUser(ctx context.Context, actorID, id string) error
	Stats(ctx context.Context, actorID string) (*admin.Stats, error)
	RecentScans(ctx context.Context, actorID string, limit int) ([]admin.RecentScan, error)
	Leaderboard(ctx context.Context, actorID string) ([]ranking.Entry, error)
	AuditTrail(ctx context.Context, actorID string, limit int) ([]audit.Event, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes. Callers must apply RequireAuth and
// RequireRole for the admin role upstream.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/admin/users", h.HandleListUsers)
	r.Get("/api/admin/users/{id}", h.HandleGetUser)
	r.Put("/api/admin/users/{id}", h.HandleUpdateUser)
	r.Delete("/api/admin/users/{id}", h.HandleDeleteUser)
	r.Get("/api/admin/stats", h.HandleStats)
	r.Get("/api/admin/recent-scans", h.HandleRecentScans)
	r.Get("/api/admin/leaderboard", h.HandleLeaderboard)
	r.Get("/api/admin/audit", h.HandleAuditTrail)
}

type userRow struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	TotalPoints int         `json:"totalPoints"`
	ScanCount   int         `json:"scanCount"`
	Role        models.Role `json:"role"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type userDetail struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	TotalPoints int                `json:"totalPoints"`
	Role        models.Role        `json:"role"`
	ScanHistory []models.ScanEvent `json:"scanHistory"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	TotalPoints *int    `json:"totalPoints"`
	Role        *string `json:"role"`
}

type updateResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	TotalPoints int         `json:"totalPoints"`
	Role        models.Role `json:"role"`
}

type dustbinStat struct {
	DustbinID string `json:"dustbinId"`
	Location  string `json:"location"`
	Scans     int    `json:"scans"`
}

type statsResponse struct {
	TotalScans   int           `json:"totalScans"`
	TotalUsers   int           `json:"totalUsers"`
	DustbinStats []dustbinStat `json:"dustbinStats"`
}

type scanRow struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	DustbinID string    `json:"dustbinId"`
	Timestamp time.Time `json:"timestamp"`
}

type leaderboardRow struct {
	Rank        int         `json:"rank"`
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	TotalPoints int         `json:"totalPoints"`
	ScanCount   int         `json:"scanCount"`
	LastScan    *time.Time  `json:"lastScan"`
	Role        models.Role `json:"role"`
}

type auditRow struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId,omitempty"`
	ActorID   string    `json:"actorId,omitempty"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.service.ListUsers(ctx, requestcontext.IdentityID(ctx))
	if err != nil {
		h.fail(ctx, "list users failed", err)
		httputil.WriteError(w, err)
		return
	}
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow(u))
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, err := h.service.GetUser(ctx, requestcontext.IdentityID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, "get user failed", err)
		httputil.WriteError(w, err)
		return
	}
	history := identity.ScanHistory
	if history == nil {
		history = []models.ScanEvent{}
	}
	httputil.WriteJSON(w, http.StatusOK, userDetail{
		ID:          identity.ID,
		Name:        identity.Name,
		Email:       identity.Email,
		TotalPoints: identity.TotalPoints,
		Role:        identity.Role,
		ScanHistory: history,
		CreatedAt:   identity.CreatedAt,
	})
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, "invalid update request", err)
		httputil.WriteError(w, err)
		return
	}

	updated, err := h.service.UpdateUser(ctx, requestcontext.IdentityID(ctx), chi.URLParam(r, "id"), admin.Patch(req))
	if err != nil {
		h.fail(ctx, "update user failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updateResponse{
		ID:          updated.ID,
		Name:        updated.Name,
		Email:       updated.Email,
		TotalPoints: updated.TotalPoints,
		Role:        updated.Role,
	})
}

func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.DeleteUser(ctx, requestcontext.IdentityID(ctx), chi.URLParam(r, "id")); err != nil {
		h.fail(ctx, "delete user failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.Stats(ctx, requestcontext.IdentityID(ctx))
	if err != nil {
		h.fail(ctx, "stats failed", err)
		httputil.WriteError(w, err)
		return
	}
	resp := statsResponse{
		TotalScans:   stats.TotalScans,
		TotalUsers:   stats.TotalUsers,
		DustbinStats: make([]dustbinStat, 0, len(stats.DustbinStats)),
	}
	for _, d := range stats.DustbinStats {
		resp.DustbinStats = append(resp.DustbinStats, dustbinStat(d))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleRecentScans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scans, err := h.service.RecentScans(ctx, requestcontext.IdentityID(ctx), parseLimit(r))
	if err != nil {
		h.fail(ctx, "recent scans failed", err)
		httputil.WriteError(w, err)
		return
	}
	rows := make([]scanRow, 0, len(scans))
	for _, s := range scans {
		rows = append(rows, scanRow(s))
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.Leaderboard(ctx, requestcontext.IdentityID(ctx))
	if err != nil {
		h.fail(ctx, "admin leaderboard failed", err)
		httputil.WriteError(w, err)
		return
	}
	rows := make([]leaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, leaderboardRow{
			Rank:        e.Rank,
			ID:          e.ID,
			Name:        e.Name,
			Email:       e.Email,
			TotalPoints: e.TotalPoints,
			ScanCount:   e.ScanCount,
			LastScan:    e.LastScan,
			Role:        e.Role,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.service.AuditTrail(ctx, requestcontext.IdentityID(ctx), parseLimit(r))
	if err != nil {
		h.fail(ctx, "audit trail failed", err)
		httputil.WriteError(w, err)
		return
	}
	rows := make([]auditRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, auditRow{
			ID:        e.ID,
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			UserID:    e.UserID,
			ActorID:   e.ActorID,
			Action:    e.Action,
			Subject:   e.Subject,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

// parseLimit falls back to the service default on anything unparseable.
func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func (h *Handler) fail(ctx context.Context, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"actor_id", requestcontext.IdentityID(ctx),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}
