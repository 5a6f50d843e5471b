package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name           string
		storage        Pinger
		expectedStatus int
		expectedHealth string
		connected      bool
	}{
		{
			name:           "healthy",
			storage:        pingFunc(func(ctx context.Context) error { return nil }),
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			connected:      true,
		},
		{
			name:           "storage down",
			storage:        pingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "unhealthy",
		},
		{
			name:           "no storage",
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.storage, "phonepe", "test", "1.0.0")

			rr := httptest.NewRecorder()
			handler.Check(rr, httptest.NewRequest("GET", "/health", nil))

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			var body struct {
				Success bool         `json:"success"`
				Data    HealthStatus `json:"data"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if body.Data.Status != tt.expectedHealth {
				t.Errorf("Expected status %s, got %s", tt.expectedHealth, body.Data.Status)
			}
			if body.Data.Gateway != "phonepe" {
				t.Errorf("Expected gateway phonepe, got %s", body.Data.Gateway)
			}
			if body.Data.Storage == nil || body.Data.Storage.Connected != tt.connected {
				t.Errorf("Unexpected storage health %+v", body.Data.Storage)
			}
			if body.Success != (tt.expectedStatus == http.StatusOK) {
				t.Errorf("Unexpected success flag %v", body.Success)
			}
		})
	}
}
