package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/service"
	"github.com/faultlinehq/faultline/internal/utils"
)

const maxBodyBytes = 1 << 20

// Response is the envelope returned by every JSON endpoint.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// Handlers exposes the analytics service over HTTP.
type Handlers struct {
	service *service.AnalyticsService
	hub     *Hub
	logger  *slog.Logger
}

func NewHandlers(svc *service.AnalyticsService, hub *Hub, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = utils.NewSilentLogger()
	}
	return &Handlers{service: svc, hub: hub, logger: logger}
}

// Router builds the HTTP route table.
func (h *Handlers) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware, LoggingMiddleware(h.logger), CORSMiddleware)

	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	if h.hub != nil {
		router.HandleFunc("/ws/advisories", h.hub.HandleWS)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/events", h.handleIngest).Methods(http.MethodPost)
	api.HandleFunc("/events/batch", h.handleIngestBatch).Methods(http.MethodPost)
	api.HandleFunc("/analyze", h.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/patterns", h.handlePatterns).Methods(http.MethodGet)
	api.HandleFunc("/trends", h.handleTrends).Methods(http.MethodGet)
	api.HandleFunc("/components", h.handleComponents).Methods(http.MethodGet)
	api.HandleFunc("/summary", h.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/export", h.handleExport).Methods(http.MethodPost)
	api.HandleFunc("/runs", h.handleRuns).Methods(http.MethodGet)

	return router
}

func (h *Handlers) handleIngest(w http.ResponseWriter, r *http.Request) {
	var in models.IngestEvent
	if err := decodeJSON(w, r, &in); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.ErrorCode == "" || in.Component == "" {
		h.sendError(w, http.StatusBadRequest, "error_code and component are required")
		return
	}
	if in.Severity == "" {
		in.Severity = "error"
	}

	h.service.Ingest(r.Context(), in.ToEvent())
	h.sendData(w, http.StatusAccepted, map[string]any{"accepted": 1})
}

func (h *Handlers) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var batch []models.IngestEvent
	if err := decodeJSON(w, r, &batch); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	events := make([]models.ErrorEvent, 0, len(batch))
	rejected := 0
	for _, in := range batch {
		if in.ErrorCode == "" || in.Component == "" {
			rejected++
			continue
		}
		if in.Severity == "" {
			in.Severity = "error"
		}
		events = append(events, in.ToEvent())
	}

	accepted := h.service.IngestAll(r.Context(), events)
	h.sendData(w, http.StatusAccepted, map[string]any{
		"accepted": accepted,
		"rejected": rejected,
	})
}

func (h *Handlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	h.sendData(w, http.StatusOK, h.service.Analyze(r.Context()))
}

func (h *Handlers) handlePatterns(w http.ResponseWriter, r *http.Request) {
	h.sendData(w, http.StatusOK, h.service.Patterns())
}

func (h *Handlers) handleTrends(w http.ResponseWriter, r *http.Request) {
	var periods []string
	if raw := r.URL.Query().Get("periods"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				periods = append(periods, p)
			}
		}
	}
	h.sendData(w, http.StatusOK, h.service.Trends(periods))
}

func (h *Handlers) handleComponents(w http.ResponseWriter, r *http.Request) {
	h.sendData(w, http.StatusOK, h.service.ComponentHealth())
}

func (h *Handlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	h.sendData(w, http.StatusOK, h.service.Summary(r.Context()))
}

func (h *Handlers) handleExport(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		h.sendError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := h.service.Export(req.Path); err != nil {
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.sendData(w, http.StatusOK, map[string]any{"path": req.Path})
}

func (h *Handlers) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			h.sendError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	runs, err := h.service.RecentRuns(r.Context(), limit)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.sendData(w, http.StatusOK, runs)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.sendData(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"window_events":   h.service.EventCount(),
		"analysis_p95_ms": h.service.LatencyP95().Milliseconds(),
	})
}

func (h *Handlers) sendData(w http.ResponseWriter, status int, data any) {
	h.sendJSON(w, status, Response{Success: true, Data: data})
}

func (h *Handlers) sendError(w http.ResponseWriter, status int, msg string) {
	h.sendJSON(w, status, Response{Success: false, Error: msg})
}

func (h *Handlers) sendJSON(w http.ResponseWriter, status int, resp Response) {
	resp.Time = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("response encode failed", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
