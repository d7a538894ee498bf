package scoring

import (
	"context"
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

// Handler serves the Scoring Service's HTTP surface.
type Handler struct {
	svc *Service
	db  health.Checker
	mq  health.Checker
	log zerolog.Logger
}

// NewHandler builds a Handler. db/mq may be nil in tests.
func NewHandler(svc *Service, db, mq health.Checker, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, db: db, mq: mq, log: log.With().Str("handler", "scoring").Logger()}
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := health.Check(r.Context(), h.db, h.mq)
	h.writeJSON(w, http.StatusOK, report)
}

// HandlePredict handles GET/POST /api/v1/predict.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)
	result, err := h.svc.Predict(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("predict failed")
		h.writeError(w, http.StatusInternalServerError, apperrors.KindTransientExternal, "predict failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

// HandleSignals handles GET /api/v1/signals?state=&limit=.
func (h *Handler) HandleSignals(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	limit := parseLimit(r, 50)
	signals, err := h.svc.ListSignals(r.Context(), state, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list signals")
		h.writeError(w, http.StatusInternalServerError, apperrors.KindTransientExternal, "failed to list signals")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": signals})
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

// HandleSimulate handles POST /api/v1/simulate.
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, apperrors.KindValidationFailure, "invalid request body")
		return
	}

	limit := parseLimit(r, 1000)
	result, err := h.svc.Simulate(r.Context(), limit, req)
	if err != nil {
		if apperrors.Is(err, apperrors.KindTransientExternal) {
			h.log.Error().Err(err).Msg("simulate failed")
			h.writeError(w, http.StatusInternalServerError, apperrors.KindTransientExternal, "simulate failed")
			return
		}
		h.log.Warn().Err(err).Msg("simulate rejected")
		h.writeError(w, http.StatusBadRequest, apperrors.KindValidationFailure, "simulation parameters out of range")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

// InitializeEconomicDataFunc loads reference data from the artifact store
// on demand; injected so the handler doesn't need a direct artifactstore
// dependency.
type InitializeEconomicDataFunc func(ctx context.Context) error

// HandleInitializeEconomicData handles POST /api/v1/initialize-economic-data.
func (h *Handler) HandleInitializeEconomicData(reload InitializeEconomicDataFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reload(r.Context()); err != nil {
			h.log.Error().Err(err).Msg("failed to initialize economic data")
			h.writeError(w, http.StatusInternalServerError, apperrors.KindConfigurationError, "failed to initialize economic data")
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	}
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
