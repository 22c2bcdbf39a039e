package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartbin/internal/ranking"
	"smartbin/pkg/platform/httputil"
	"smartbin/pkg/requestcontext"
)

type Leaderboard interface {
	Leaderboard(ctx context.Context) ([]ranking.Entry, error)
}

// Handler serves the public leaderboard. No credential is required.
type Handler struct {
	view   Leaderboard
	logger *slog.Logger
}

func New(view Leaderboard, logger *slog.Logger) *Handler {
	return &Handler{view: view, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/leaderboard", h.HandleLeaderboard)
}

// publicEntry deliberately omits email and id.
type publicEntry struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	TotalPoints int    `json:"totalPoints"`
}

func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.view.Leaderboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]publicEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, publicEntry{Rank: e.Rank, Name: e.Name, TotalPoints: e.TotalPoints})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
