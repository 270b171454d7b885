package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/mortgage-simulator/internal/cache"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"github.com/iwvelando/mortgage-simulator/pkg/scenario"
	"github.com/iwvelando/mortgage-simulator/pkg/validation"
	"go.uber.org/zap"
)

type handler struct {
	logger         *zap.Logger
	maxUploadSize  int64
	version        string
	allowedOrigins []string
	runner         *simulation.Runner
	cache          cache.Cache
	store          *scenario.Store
}

// Option customizes the handler built by NewHandler.
type Option func(*handler)

// WithCache serves repeated simulations from c.
func WithCache(c cache.Cache) Option {
	return func(h *handler) {
		h.cache = c
	}
}

// WithStore enables the /api/scenarios endpoints backed by store.
func WithStore(store *scenario.Store) Option {
	return func(h *handler) {
		h.store = store
	}
}

// WithAllowedOrigins sets the origins accepted by CORS.
func WithAllowedOrigins(origins []string) Option {
	return func(h *handler) {
		h.allowedOrigins = origins
	}
}

// NewHandler constructs the HTTP handler that serves the simulation API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, opts ...Option) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		maxUploadSize:  maxUploadSize,
		version:        trimmedVersion,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.runner = simulation.NewRunner(logger, h.cache)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Version endpoint for UI metadata
		r.Get("/version", h.handleVersion)

		r.Post("/simulate", h.handleSimulate)
		r.Post("/schedule/csv", h.handleScheduleCSV)

		r.Post("/scenario/export", h.handleScenarioExport)
		r.Post("/scenario/import", h.handleScenarioImport)

		if h.store != nil {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.handleScenarioList)
				r.Get("/{name}", h.handleScenarioGet)
				r.Put("/{name}", h.handleScenarioPut)
				r.Delete("/{name}", h.handleScenarioDelete)
			})
		}
	})

	return r
}

// simulationRequest is the loan and its planned extra payments.
type simulationRequest struct {
	Inputs        loans.LoanInputs          `json:"inputs"`
	ExtraPayments []loans.ExtraPaymentEntry `json:"extraPayments"`
}

type simulationResponse struct {
	Schedule  []loans.ScheduleRow `json:"schedule"`
	KPIs      loans.KPIs          `json:"kpis"`
	CSV       string              `json:"csv"`
	Converged bool                `json:"converged"`
	Cached    bool                `json:"cached"`
	Warnings  []string            `json:"warnings,omitempty"`
	Duration  string              `json:"duration"`
}

type validationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	start := time.Now()

	req, ok := h.decodeSimulationRequest(w, r, op)
	if !ok {
		return
	}

	result, cached, ok := h.simulate(w, r, req, op)
	if !ok {
		return
	}

	csvData, err := output.ScheduleCSV(result.Schedule)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode schedule: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := simulationResponse{
		Schedule:  result.Schedule,
		KPIs:      result.KPIs,
		CSV:       csvData,
		Converged: result.Converged(),
		Cached:    cached,
		Warnings:  validation.ValidateExtraPayments(req.ExtraPayments, req.Inputs.TermMonths),
		Duration:  elapsed.String(),
	}
	if response.Schedule == nil {
		response.Schedule = []loans.ScheduleRow{}
	}

	h.logger.Info("simulation computed",
		zap.String("op", op),
		zap.Int("months", len(result.Schedule)),
		zap.Bool("converged", response.Converged),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleCSV"

	req, ok := h.decodeSimulationRequest(w, r, op)
	if !ok {
		return
	}

	result, _, ok := h.simulate(w, r, req, op)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := output.WriteScheduleCSV(w, result.Schedule); err != nil {
		h.logger.Error("failed to write CSV response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleScenarioExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioExport"

	encoding, err := scenario.ParseEncoding(r.URL.Query().Get("format"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	req, ok := h.decodeSimulationRequest(w, r, op)
	if !ok {
		return
	}

	h.writeDocument(w, scenario.NewDocument(req.Inputs, req.ExtraPayments), encoding, op)
}

func (h *handler) handleScenarioImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioImport"

	data, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	doc, err := scenario.Decode(data, scenario.EncodingFromContentType(r.Header.Get("Content-Type")))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, simulationRequest{
		Inputs:        doc.Inputs,
		ExtraPayments: doc.ExtraPayments,
	})
}

func (h *handler) handleScenarioList(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioList"

	names, err := h.store.List()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"scenarios": names})
}

func (h *handler) handleScenarioGet(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioGet"

	doc, err := h.store.Load(chi.URLParam(r, "name"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeDocument(w, doc, scenario.EncodingJSON, op)
}

func (h *handler) handleScenarioPut(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioPut"

	req, ok := h.decodeSimulationRequest(w, r, op)
	if !ok {
		return
	}
	if errs := validation.ValidateInputs(req.Inputs); len(errs) > 0 {
		h.respondValidationErrors(w, errs, op)
		return
	}

	name, err := h.store.Save(chi.URLParam(r, "name"), scenario.NewDocument(req.Inputs, req.ExtraPayments))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (h *handler) handleScenarioDelete(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioDelete"

	if err := h.store.Delete(chi.URLParam(r, "name")); err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// simulate validates the request and runs it, writing an error response and
// returning false on failure.
func (h *handler) simulate(w http.ResponseWriter, r *http.Request, req simulationRequest, op string) (loans.Result, bool, bool) {
	if errs := validation.ValidateInputs(req.Inputs); len(errs) > 0 {
		h.respondValidationErrors(w, errs, op)
		return loans.Result{}, false, false
	}

	result, cached, err := h.runner.Simulate(r.Context(), req.Inputs, req.ExtraPayments)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to simulate: %v", err), op)
		return loans.Result{}, false, false
	}
	return result, cached, true
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return data, true
}

func (h *handler) decodeSimulationRequest(w http.ResponseWriter, r *http.Request, op string) (simulationRequest, bool) {
	data, ok := h.readBody(w, r, op)
	if !ok {
		return simulationRequest{}, false
	}

	var req simulationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return simulationRequest{}, false
	}
	if req.Inputs.YearMode == "" {
		req.Inputs.YearMode = loans.YearModeBlocks
	}
	return req, true
}

func (h *handler) writeDocument(w http.ResponseWriter, doc scenario.Document, encoding scenario.Encoding, op string) {
	data, err := scenario.Encode(doc, encoding)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode scenario: %v", err), op)
		return
	}

	contentType := "application/json"
	if encoding == scenario.EncodingYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="scenario.%s"`, encoding))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write scenario response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, scenario.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondValidationErrors(w http.ResponseWriter, errs []string, op string) {
	h.logger.Info("rejected invalid inputs",
		zap.String("op", op),
		zap.Strings("errors", errs),
	)
	h.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:  "invalid inputs",
		Errors: errs,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// loggingMiddleware logs HTTP requests
func (h *handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug("HTTP request",
			zap.String("op", "server.loggingMiddleware"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}
