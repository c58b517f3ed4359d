package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// AnalyzeHandler lets API clients request an out-of-schedule pricing run.
type AnalyzeHandler struct {
	logger    *slog.Logger
	triggerCh chan<- struct{} // when non-nil, sending triggers one run
}

// NewAnalyzeHandler creates an AnalyzeHandler with the given logger.
func NewAnalyzeHandler(logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger}
}

// WithTriggerChannel sets the channel to send on when a run is requested.
// The watch loop must receive from this channel to run one cycle.
func (h *AnalyzeHandler) WithTriggerChannel(ch chan<- struct{}) *AnalyzeHandler {
	h.triggerCh = ch
	return h
}

// TriggerAnalyze enqueues one pricing run. The send is non-blocking so a
// pending trigger is never duplicated.
// POST /api/analyze
func (h *AnalyzeHandler) TriggerAnalyze(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "handler: pricing run requested")
	if h.triggerCh != nil {
		select {
		case h.triggerCh <- struct{}{}:
		default:
			// already triggered and not yet consumed
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"message":      "pricing run enqueued",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}
