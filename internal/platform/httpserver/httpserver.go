package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

const maxHeaderBytes = 16 << 10

// New builds the API server. Scan and auth payloads are tiny, so header and
// read budgets stay small; net/http's own errors go to logger at error level.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    maxHeaderBytes,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	}
	return srv
}
