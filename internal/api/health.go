package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"routegraph/dashboard/internal/live"
)

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

type HealthCheckResponse struct {
	Status     string                   `json:"status"`
	Uptime     string                   `json:"uptime"`
	Workspaces int                      `json:"workspaces"`
	Services   map[string]ServiceStatus `json:"services"`
}

// HealthCheckHandler handles GET /ui/api/health
//
// A live channel that is still reconnecting reports "degraded": the
// dashboard keeps serving, only pushed updates are delayed.
func HealthCheckHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]ServiceStatus)

		if deps.Channel != nil {
			state := deps.Channel.State()
			status := "ok"
			if state != live.StateConnected {
				status = "degraded"
			}
			services["live_channel"] = ServiceStatus{Status: status, Details: state.String()}
		}

		if deps.Redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			redisStatus := ServiceStatus{Status: "ok", Details: "Redis Connected"}
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = ServiceStatus{Status: "down", Details: err.Error()}
			}
			services["redis"] = redisStatus
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status == "down" {
				overallStatus = "down"
				break
			}
			if svc.Status != "ok" {
				overallStatus = "degraded"
			}
		}

		workspaces := 0
		if deps.Registry != nil {
			workspaces = deps.Registry.Len()
		}

		resp := HealthCheckResponse{
			Status:     overallStatus,
			Uptime:     time.Since(deps.UpSince).Round(time.Second).String(),
			Workspaces: workspaces,
			Services:   services,
		}
		w.Header().Set("Content-Type", "application/json")
		if overallStatus == "down" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
