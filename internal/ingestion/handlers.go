package ingestion

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/health"
	"github.com/naija-watch/conflict-monitor/internal/scheduler"
)

// errorBody is the user-visible failure shape: a stable error_code plus
// a message with no internal detail.
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Handler serves the Ingestion Service's HTTP surface.
type Handler struct {
	svc      *Service
	sch      *scheduler.Scheduler
	schedule string
	db       health.Checker
	mq       health.Checker
	log      zerolog.Logger
}

// NewHandler builds a Handler. db/mq may be nil in tests.
func NewHandler(svc *Service, sch *scheduler.Scheduler, schedule string, db, mq health.Checker, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, sch: sch, schedule: schedule, db: db, mq: mq, log: log.With().Str("handler", "ingestion").Logger()}
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := health.Check(r.Context(), h.db, h.mq)
	h.writeJSON(w, http.StatusOK, report)
}

// HandleSchedulerStatus handles GET /api/v1/scheduler/status.
func (h *Handler) HandleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Status(h.sch, h.schedule)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": status})
}

// HandleAutomationLogs handles GET /api/v1/automation/logs?limit=.
func (h *Handler) HandleAutomationLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)
	logs, err := h.svc.store.AutomationLogs(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read automation logs")
		h.writeError(w, http.StatusInternalServerError, apperrors.KindTransientExternal, "failed to read automation logs")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": logs})
}

// HandleArticles handles GET /api/v1/articles?limit=.
func (h *Handler) HandleArticles(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	articles, err := h.svc.articles.List(r.Context(), time.Time{}, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list articles")
		h.writeError(w, http.StatusInternalServerError, apperrors.KindTransientExternal, "failed to list articles")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": articles})
}

// HandleScrape handles GET/POST /api/v1/scrape: both methods trigger an
// on-demand run and return the run counts.
func (h *Handler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.TriggerScrape(r.Context(), h.sch)
	if err != nil {
		h.log.Warn().Err(err).Msg("scrape trigger rejected")
		h.writeError(w, http.StatusConflict, apperrors.KindSchedulerBusy, "ingestion run already in progress")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
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
