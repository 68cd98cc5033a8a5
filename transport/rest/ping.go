package rest

import (
	"context"
	"log/slog"
	"net/http"
)

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

// Pinger - a backing store whose health decides the ping answer.
type Pinger func(ctx context.Context) error

type pingHandler struct {
	logger  *slog.Logger
	pingers map[string]Pinger
}

func NewPingHandler(logger *slog.Logger, pingers map[string]Pinger) PingHandler {
	return &pingHandler{
		logger:  logger,
		pingers: pingers,
	}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	for name, ping := range that.pingers {
		if err := ping(r.Context()); err != nil {
			that.logger.Error("store is unavailable", "store", name, "error", err)
			http.Error(w, name+" is unavailable", http.StatusServiceUnavailable)

			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
