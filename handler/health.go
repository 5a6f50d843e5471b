package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/eventpay/infra/response"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	storage     Pinger
	gateway     string
	environment string
	version     string
	startTime   time.Time
}

// HealthStatus represents overall service health
type HealthStatus struct {
	Status      string         `json:"status"`
	Version     string         `json:"version"`
	Timestamp   time.Time      `json:"timestamp"`
	Uptime      string         `json:"uptime"`
	Environment string         `json:"environment"`
	Gateway     string         `json:"gateway"`
	Storage     *StorageHealth `json:"storage"`
	GoRoutines  int            `json:"goroutines"`
}

// StorageHealth represents storage connectivity
type StorageHealth struct {
	Status         string `json:"status"`
	Connected      bool   `json:"connected"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage Pinger, gateway, environment, version string) *HealthHandler {
	return &HealthHandler{
		storage:     storage,
		gateway:     gateway,
		environment: environment,
		version:     version,
		startTime:   time.Now(),
	}
}

// Check reports service and storage health. Storage failures return 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:      "healthy",
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		Gateway:     h.gateway,
		Storage:     h.checkStorage(ctx),
		GoRoutines:  runtime.NumGoroutine(),
	}

	code := http.StatusOK
	if !status.Storage.Connected {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, code, response.Response{
		Code:    code,
		Success: code == http.StatusOK,
		Message: "Health check",
		Data:    status,
	})
}

func (h *HealthHandler) checkStorage(ctx context.Context) *StorageHealth {
	if h.storage == nil {
		return &StorageHealth{Status: "unconfigured", Error: "storage not configured"}
	}

	start := time.Now()
	err := h.storage.Ping(ctx)
	sh := &StorageHealth{
		Status:         "up",
		Connected:      err == nil,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		sh.Status = "down"
		sh.Error = err.Error()
	}
	return sh
}
