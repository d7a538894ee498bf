package extraction

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/health"
)

// errorBody is the user-visible failure shape: a stable error_code plus
// a message with no internal detail.
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Handler serves the Extraction Service's HTTP surface.
type Handler struct {
	svc *Service
	db  health.Checker
	mq  health.Checker
	log zerolog.Logger
}

// NewHandler builds a Handler. db/mq may be nil in tests.
func NewHandler(svc *Service, db, mq health.Checker, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, db: db, mq: mq, log: log.With().Str("handler", "extraction").Logger()}
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := health.Check(r.Context(), h.db, h.mq)
	h.writeJSON(w, http.StatusOK, report)
}

// HandleAnalyze handles GET/POST /api/v1/analyze.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	n := parseLimit(r, 10)
	result, err := h.svc.AnalyzeBatch(r.Context(), int64(n))
	if err != nil {
		h.log.Error().Err(err).Msg("analyze batch failed")
		h.writeError(w, http.StatusInternalServerError, apperrors.KindTransientExternal, "analyze failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

// HandleEvents handles GET /api/v1/events.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	events, err := h.svc.ListEvents(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list events")
		h.writeError(w, http.StatusInternalServerError, apperrors.KindTransientExternal, "failed to list events")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": events})
}

// HandleStatus handles GET /api/v1/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": h.svc.Status()})
}

// HandleStartProcessor handles POST /api/v1/start-processor.
func (h *Handler) HandleStartProcessor(w http.ResponseWriter, r *http.Request) {
	h.svc.StartProcessor()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": h.svc.Status()})
}

// HandleStopProcessor handles POST /api/v1/stop-processor.
func (h *Handler) HandleStopProcessor(w http.ResponseWriter, r *http.Request) {
	h.svc.StopProcessor()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": h.svc.Status()})
}

func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (h *Handler) writeError(w http.ResponseWriter, status int, kind apperrors.Kind, msg string) {
	h.writeJSON(w, status, errorBody{ErrorCode: apperrors.Code(kind), Message: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}
