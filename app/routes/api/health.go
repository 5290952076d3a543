// Package api holds the JSON endpoints mounted on the route tree.
package api

import (
	"time"

	"github.com/marycampus/advisor/internal/sysinfo"
	"github.com/marycampus/advisor/pkg/server"
)

var started = time.Now()

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string           `json:"status"`
	Uptime string           `json:"uptime"`
	System sysinfo.Snapshot `json:"system"`
}

// Health reports process health and a system snapshot.
func Health(ctx server.Ctx) (any, error) {
	return HealthResponse{
		Status: "ok",
		Uptime: time.Since(started).Round(time.Second).String(),
		System: sysinfo.Collect(),
	}, nil
}
