package worker

import (
	"context"
	"log/slog"

	audit "smartbin/pkg/platform/audit"
)

// Worker drains an inbox of audit events into a store. Append failures are
// logged and skipped: audit is best-effort and must not stall the inbox.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run processes events until the inbox is closed or ctx is cancelled.
// On a closed inbox it returns nil after draining.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(context.WithoutCancel(ctx), event); err != nil && w.logger != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"action", event.Action,
					"user_id", event.UserID,
					"error", err,
				)
			}
		}
	}
}
