// Package server exposes the fiscal computation as a small JSON API. It
// serves no UI: a client posts a YAML operation file and receives the
// snapshot plus the dashboard and timeline projections.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fbonnet/fiscal-forecast/internal/config"
	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/fbonnet/fiscal-forecast/internal/engine"
	"github.com/fbonnet/fiscal-forecast/internal/presenter"
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the compute API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = constants.EngineVersion
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Compute API endpoint (YAML operation file in the request body)
	mux.HandleFunc("/api/compute", h.handleCompute)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type computeResponse struct {
	Snapshot  *domain.FiscalSnapshot         `json:"snapshot"`
	Dashboard *presenter.DashboardViewModel  `json:"dashboard,omitempty"`
	Timeline  []presenter.TimelineMonth      `json:"timeline"`
	Warnings  []string                       `json:"warnings,omitempty"`
	Duration  string                         `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxUploadSize+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body", "")
		return
	}
	if int64(len(body)) > h.maxUploadSize {
		h.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", h.maxUploadSize), "")
		return
	}

	var conf config.Configuration
	if err := yaml.Unmarshal(body, &conf); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid YAML: %v", err), "")
		return
	}
	conf.Normalize()

	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		h.writeFiscalError(w, err)
		return
	}

	started := time.Now()
	snap, err := engine.ComputeFiscalSnapshot(h.logger, conf.Operations, &conf.Context, conf.Anchor)
	if err != nil {
		h.writeFiscalError(w, err)
		return
	}
	duration := time.Since(started)

	resp := computeResponse{
		Snapshot: snap,
		Timeline: presenter.NewTimelinePresenter(snap).GetEvents(),
		Warnings: warnings,
		Duration: duration.String(),
	}

	dashboard := presenter.NewDashboardPresenter(snap, conf.Anchor)
	vm, vmErr := dashboard.GetViewModel(presenter.Period{
		Type:  presenter.PeriodYear,
		Value: strconv.Itoa(conf.Context.TaxYear),
	})
	if vmErr == nil {
		resp.Dashboard = vm
	}

	h.logger.Info("compute request served",
		zap.String("op", "server.handleCompute"),
		zap.Duration("duration", duration),
		zap.Int("alerts", len(snap.Alerts)),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

// writeFiscalError maps the fatal error hierarchy onto HTTP statuses: every
// FiscalError is a client-input problem, anything else is internal.
func (h *handler) writeFiscalError(w http.ResponseWriter, err error) {
	var fiscalErr *domain.FiscalError
	if errors.As(err, &fiscalErr) {
		h.writeError(w, http.StatusUnprocessableEntity, fiscalErr.Message, string(fiscalErr.Code))
		return
	}
	h.logger.Error("compute failed",
		zap.String("op", "server.handleCompute"),
		zap.Error(err),
	)
	h.writeError(w, http.StatusInternalServerError, "computation failed", "")
}

func (h *handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
