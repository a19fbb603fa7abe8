package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

type LogPage struct {
	Logs  []models.SystemLog `json:"logs"`
	Total int64              `json:"total"`
}

type CreateLogRequest struct {
	Level     models.LogLevel `json:"level"`
	Source    string          `json:"source"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitempty"`
	NetworkID string          `json:"networkId,omitempty"`
}

type ResolveLogRequest struct {
	ResolvedBy string `json:"resolvedBy"`
	Action     string `json:"action"`
	Result     string `json:"result"`
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}

func logFilter(r *http.Request) (repository.LogFilter, error) {
	q := r.URL.Query()
	f := repository.LogFilter{
		Source:    q.Get("source"),
		UserID:    q.Get("userId"),
		NetworkID: q.Get("networkId"),
	}
	if l := q.Get("level"); l != "" {
		f.Level = models.LogLevel(l)
		if !f.Level.Valid() {
			return f, errors.New("Invalid level filter")
		}
	}
	if res := q.Get("resolved"); res != "" {
		v, err := strconv.ParseBool(res)
		if err != nil {
			return f, errors.New("resolved must be true or false")
		}
		f.Resolved = &v
	}
	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, errors.New("since must be an RFC 3339 timestamp")
		}
		f.Since = &t
	}
	return f, nil
}

func (h *Handler) GetSystemLogs(w http.ResponseWriter, r *http.Request) {
	f, err := logFilter(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := intParam(r, "limit", defaultLogLimit)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := h.repo.CountLogs(r.Context(), f)
	if err != nil {
		h.sendError(w, err)
		return
	}
	f.Limit, f.Skip = limit, skip
	logs, err := h.repo.ListLogs(r.Context(), f)
	if err != nil {
		h.sendError(w, err)
		return
	}
	if logs == nil {
		logs = []models.SystemLog{}
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: LogPage{Logs: logs, Total: total}})
}

func (h *Handler) CreateSystemLog(w http.ResponseWriter, r *http.Request) {
	var req CreateLogRequest
	if !h.decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		h.fail(w, http.StatusBadRequest, "Message is required")
		return
	}
	if req.Level == "" {
		req.Level = models.LevelInfo
	}
	if !req.Level.Valid() {
		h.fail(w, http.StatusBadRequest, "Level must be one of info, warning, error, critical")
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	entry := models.SystemLog{
		Level:     req.Level,
		Source:    req.Source,
		Message:   req.Message,
		Details:   req.Details,
		UserID:    middleware.UserID(r),
		NetworkID: req.NetworkID,
	}
	if err := h.repo.CreateLog(r.Context(), &entry); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, Response{Success: true, Message: "Log entry created", Data: entry})
}

func (h *Handler) ResolveLog(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req ResolveLogRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	entry, err := h.repo.GetLog(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.fail(w, http.StatusNotFound, "Log entry not found")
			return
		}
		h.sendError(w, err)
		return
	}
	if entry.Resolved {
		h.fail(w, http.StatusBadRequest, "Log entry is already resolved")
		return
	}

	resolvedBy := req.ResolvedBy
	if resolvedBy == "" {
		resolvedBy = middleware.UserID(r)
	}
	now := time.Now().UTC()
	entry.Resolved = true
	entry.ResolvedBy = resolvedBy
	entry.ResolvedAt = &now
	if req.Action != "" {
		entry.Actions = append(entry.Actions, models.LogAction{
			Action:    req.Action,
			Timestamp: now,
			UserID:    resolvedBy,
			Result:    req.Result,
		})
	}

	if err := h.repo.UpdateLog(r.Context(), entry); err != nil {
		h.sendError(w, err)
		return
	}

	h.logger.Info("Log entry resolved", "log_id", id, "resolved_by", resolvedBy)
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Log entry resolved", Data: entry})
}
