package handlers

import (
	"github.com/gorilla/mux"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
)

type RouterOptions struct {
	// JWTSecret turns on bearer auth for /api when set.
	JWTSecret   string
	RateLimiter *middleware.RateLimiter
}

func (h *Handler) Router(opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
		r.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	}
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware)
	}
	api.Use(middleware.Auth(opts.JWTSecret))

	// Users
	api.HandleFunc("/users", h.GetUsers).Methods("GET")
	api.HandleFunc("/users", h.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}", h.UpdateUser).Methods("PUT")
	api.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")
	api.HandleFunc("/users/{id}/reset-password", h.ResetPassword).Methods("POST")

	// Networks
	api.HandleFunc("/networks/stats/summary", h.GetNetworkStats).Methods("GET")
	api.HandleFunc("/networks", h.GetNetworks).Methods("GET")
	api.HandleFunc("/networks", h.CreateNetwork).Methods("POST")
	api.HandleFunc("/networks/{id}", h.GetNetwork).Methods("GET")
	api.HandleFunc("/networks/{id}", h.UpdateNetwork).Methods("PUT")
	api.HandleFunc("/networks/{id}", h.DeleteNetwork).Methods("DELETE")
	api.HandleFunc("/networks/{id}/status", h.UpdateNetworkStatus).Methods("PUT")
	api.HandleFunc("/networks/{id}/validators", h.AddValidator).Methods("POST")
	api.HandleFunc("/networks/{id}/validators/{validatorId}", h.RemoveValidator).Methods("DELETE")

	// System
	api.HandleFunc("/system/logs", h.GetSystemLogs).Methods("GET")
	api.HandleFunc("/system/logs", h.CreateSystemLog).Methods("POST")
	api.HandleFunc("/system/logs/{id}/resolve", h.ResolveLog).Methods("PUT")
	api.HandleFunc("/system/status", h.GetSystemStatus).Methods("GET")
	api.HandleFunc("/system/restart/{service}", h.RestartService).Methods("POST")

	// Dashboard
	api.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
	api.HandleFunc("/dashboard/quick-stats", h.GetQuickStats).Methods("GET")
	api.HandleFunc("/dashboard/activity", h.GetActivity).Methods("GET")

	// Wizard
	api.HandleFunc("/wizard/estimate", h.EstimateCost).Methods("POST")
	api.HandleFunc("/wizard/deployments/{networkId}", h.GetDeployment).Methods("GET")
	api.HandleFunc("/wizard/drafts", h.CreateDraft).Methods("POST")
	api.HandleFunc("/wizard/drafts/{id}", h.GetDraft).Methods("GET")
	api.HandleFunc("/wizard/drafts/{id}", h.DeleteDraft).Methods("DELETE")
	api.HandleFunc("/wizard/drafts/{id}/field", h.SetDraftField).Methods("PUT")
	api.HandleFunc("/wizard/drafts/{id}/slider", h.SetDraftSlider).Methods("PUT")
	api.HandleFunc("/wizard/drafts/{id}/custom-validators", h.ToggleCustomValidators).Methods("PUT")
	api.HandleFunc("/wizard/drafts/{id}/validators", h.PutDraftValidator).Methods("PUT")
	api.HandleFunc("/wizard/drafts/{id}/validators/{index}", h.RemoveDraftValidator).Methods("DELETE")
	api.HandleFunc("/wizard/drafts/{id}/validate", h.ValidateDraft).Methods("POST")
	api.HandleFunc("/wizard/drafts/{id}/estimate", h.EstimateDraft).Methods("GET")
	api.HandleFunc("/wizard/drafts/{id}/submit", h.SubmitDraft).Methods("POST")

	return r
}
