package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

type HealthHandler struct {
	DB        *sql.DB
	StartTime time.Time
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Uptime    string `json:"uptime"`
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{DB: db, StartTime: time.Now()}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	db := "connected"
	if err := h.DB.PingContext(ctx); err != nil {
		status = "degraded"
		db = "error: " + err.Error()
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  db,
		Uptime:    time.Since(h.StartTime).Round(time.Second).String(),
	})
}
