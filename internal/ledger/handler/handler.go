package handler

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"smartbin/internal/ledger"
	dErrors "smartbin/pkg/domain-errors"
	"smartbin/pkg/platform/httputil"
	"smartbin/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the ledger operation the scan endpoint drives.
type Service interface {
	Credit(ctx context.Context, identityID, dustbinID string, now time.Time) (*ledger.ScanResult, error)
}

type Handler struct {
	ledger Service
	logger *slog.Logger
}

func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, logger: logger}
}

// Register mounts the scan route. Callers wrap r with RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/scan", h.HandleScan)
}

type scanRequest struct {
	DustbinID string `json:"dustbinId"`
}

type scanEventResponse struct {
	DustbinID string    `json:"dustbinId"`
	Timestamp time.Time `json:"timestamp"`
}

type scanResponse struct {
	Message     string            `json:"message"`
	TotalPoints int               `json:"totalPoints"`
	Scan        scanEventResponse `json:"scan"`
}

type rateLimitedResponse struct {
	httputil.ErrorResponse
	RetryAfterMinutes int `json:"retry_after_minutes"`
}

func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	identityID := requestcontext.IdentityID(ctx)
	if identityID == "" {
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "not authenticated"))
		return
	}

	var req scanRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid scan request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.ledger.Credit(ctx, identityID, req.DustbinID, requestcontext.Now(ctx))
	if err != nil {
		h.writeLedgerError(ctx, w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, scanResponse{
		Message:     result.Message,
		TotalPoints: result.TotalPoints,
		Scan: scanEventResponse{
			DustbinID: result.Scan.DustbinID,
			Timestamp: result.Scan.Timestamp.UTC(),
		},
	})
}

func (h *Handler) writeLedgerError(ctx context.Context, w http.ResponseWriter, err error) {
	var cooldown *ledger.CooldownError
	if errors.As(err, &cooldown) {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(cooldown.RetryAfter.Seconds()))))
		httputil.WriteJSON(w, http.StatusTooManyRequests, rateLimitedResponse{
			ErrorResponse: httputil.ErrorResponse{
				Error:            string(dErrors.CodeRateLimited),
				ErrorDescription: cooldown.Error(),
			},
			RetryAfterMinutes: cooldown.Minutes,
		})
		return
	}

	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "scan failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
