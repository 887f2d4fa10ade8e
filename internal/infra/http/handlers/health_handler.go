package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type HealthHandler struct {
	DB             *sql.DB
	SnapshotDriver string
	RabbitMQ       *amqp091.Connection
	BackendURL     string
	StartTime      time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db *sql.DB, snapshotDriver string, rabbitMQ *amqp091.Connection, backendURL string) *HealthHandler {
	return &HealthHandler{
		DB:             db,
		SnapshotDriver: snapshotDriver,
		RabbitMQ:       rabbitMQ,
		BackendURL:     backendURL,
		StartTime:      time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			deps["snapshot"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["snapshot"] = "healthy"
		}
	} else {
		deps["snapshot"] = "not configured"
	}
	if h.SnapshotDriver != "" {
		deps["snapshot_driver"] = h.SnapshotDriver
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	if h.BackendURL != "" {
		deps["backend"] = "configured"
	} else {
		deps["backend"] = "not configured"
	}

	status := "healthy"
	for name, v := range deps {
		if name == "snapshot_driver" {
			continue
		}
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}
