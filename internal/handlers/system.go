package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/hostinfo"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/supervisor"
)

type SystemStatus struct {
	Host     *hostinfo.Snapshot         `json:"host,omitempty"`
	HostErr  string                     `json:"hostError,omitempty"`
	Services []supervisor.ServiceStatus `json:"services"`
	Database string                     `json:"database"`
	API      APIStatus                  `json:"api"`
}

type APIStatus struct {
	Version       string `json:"version"`
	GoVersion     string `json:"goVersion"`
	Goroutines    int    `json:"goroutines"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

type RestartResult struct {
	Service string `json:"service"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := SystemStatus{
		Database: "connected",
		API: APIStatus{
			Version:       Version,
			GoVersion:     runtime.Version(),
			Goroutines:    runtime.NumGoroutine(),
			UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		},
	}

	if h.host != nil {
		snap, err := h.host.Read(ctx)
		if err != nil {
			h.logger.Warn("Failed to read host info", "error", err)
			status.HostErr = err.Error()
		} else {
			status.Host = &snap
		}
	}

	for _, name := range h.supervisor.Services() {
		st, err := h.supervisor.Status(ctx, name)
		if err != nil && !errors.Is(err, supervisor.ErrUnsupported) {
			st = supervisor.ServiceStatus{Name: name, Managed: true, Detail: err.Error()}
		}
		if st.Name == "" {
			st.Name = name
		}
		status.Services = append(status.Services, st)
	}

	if err := h.repo.Ping(ctx); err != nil {
		status.Database = "disconnected"
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: status})
}

// RestartService restarts one service or, for "all", each in turn with the
// backend last. Every attempt is recorded as its own log entry.
func (h *Handler) RestartService(w http.ResponseWriter, r *http.Request) {
	targets, err := supervisor.ExpandFor(h.supervisor, mux.Vars(r)["service"])
	if err != nil {
		h.sendError(w, err)
		return
	}

	ctx := r.Context()
	results := make([]RestartResult, 0, len(targets))
	unsupported, failed := 0, 0

	for _, name := range targets {
		res := RestartResult{Service: name, Result: "ok"}
		level := models.LevelInfo
		msg := fmt.Sprintf("Service %s restarted", name)

		if err := h.supervisor.Restart(ctx, name); err != nil {
			res.Result, res.Error = "error", err.Error()
			level = models.LevelError
			msg = fmt.Sprintf("Service %s restart failed", name)
			failed++
			if errors.Is(err, supervisor.ErrUnsupported) {
				unsupported++
			}
			h.logger.Error("Service restart failed", "service", name, "error", err)
		} else {
			h.logger.Info("Service restarted", "service", name)
		}
		if h.metrics != nil {
			h.metrics.ObserveRestart(name, res.Result)
		}

		entry := models.SystemLog{
			Level:   level,
			Source:  "system",
			Message: msg,
			Actions: []models.LogAction{{
				Action:    "restart",
				Timestamp: time.Now().UTC(),
				UserID:    middleware.UserID(r),
				Result:    res.Result,
			}},
		}
		if res.Error != "" {
			entry.Details = details(map[string]interface{}{"error": res.Error})
		}
		h.audit(ctx, r, entry)
		results = append(results, res)
	}

	switch {
	case failed == 0:
		h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Restart completed", Data: results})
	case unsupported == failed:
		h.sendJSON(w, http.StatusNotImplemented, Response{Success: false, Error: supervisor.ErrUnsupported.Error(), Data: results})
	default:
		h.sendJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Restart failed", Data: results})
	}
}
