package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"mediabot/internal/services"
	"mediabot/internal/storage"
)

type HealthController struct {
	modes     services.ModeServiceInterface
	repo      storage.RepositoryInterface
	startTime time.Time
}

type healthResponse struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Mode             string  `json:"mode"`
	AllowListedUsers int     `json:"allow_listed_users"`
	Sessions         int     `json:"sessions"`
}

// Health reports 503 when the record store cannot be read.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Mode:          string(hc.modes.Mode()),
	}
	code := http.StatusOK

	cfg, err := hc.repo.LoadConfig(r.Context())
	if err == nil {
		resp.AllowListedUsers = cfg.AllowListedCount()
		resp.Sessions, err = hc.repo.CountSessions(r.Context())
	}
	if err != nil {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(modes services.ModeServiceInterface, repo storage.RepositoryInterface) *HealthController {
	return &HealthController{
		modes:     modes,
		repo:      repo,
		startTime: time.Now(),
	}
}
