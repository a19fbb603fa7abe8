package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/hostinfo"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/metrics"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/supervisor"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/validation"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/wizard"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/cache"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/redis"
)

const Version = "1.0.0"

type Handler struct {
	repo       repository.Repository
	wizard     *wizard.Service
	supervisor supervisor.Supervisor
	host       hostinfo.Reader
	redis      *redis.RedisClient
	stats      *cache.Cache
	metrics    *metrics.Metrics
	logger     *logger.Logger
	startedAt  time.Time
}

// Deps are the collaborators a Handler needs. Redis and Metrics may be nil.
type Deps struct {
	Repo       repository.Repository
	Wizard     *wizard.Service
	Supervisor supervisor.Supervisor
	Host       hostinfo.Reader
	Redis      *redis.RedisClient
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
}

func New(d Deps) *Handler {
	sup := d.Supervisor
	if sup == nil {
		sup = supervisor.None{}
	}
	return &Handler{
		repo:       d.Repo,
		wizard:     d.Wizard,
		supervisor: sup,
		host:       d.Host,
		redis:      d.Redis,
		stats:      cache.New(),
		metrics:    d.Metrics,
		logger:     d.Logger,
		startedAt:  time.Now(),
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) fail(w http.ResponseWriter, status int, msg string) {
	h.sendJSON(w, status, Response{Success: false, Error: msg})
}

func (h *Handler) invalid(w http.ResponseWriter, errs validation.Errors) {
	h.sendJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Validation failed", Details: errs})
}

// sendError maps domain errors onto the envelope. Anything unclassified is
// a 500 carrying the error text.
func (h *Handler) sendError(w http.ResponseWriter, err error) {
	var verr *wizard.ValidationError
	var ferrs validation.Errors
	switch {
	case errors.As(err, &verr):
		h.invalid(w, verr.Errors)
	case errors.As(err, &ferrs):
		h.invalid(w, ferrs)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, wizard.ErrDraftNotFound):
		h.fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrInvalidValue),
		errors.Is(err, wizard.ErrIndexOutOfRange),
		errors.Is(err, wizard.ErrNotConfirmed),
		errors.Is(err, wizard.ErrUnknownPricing),
		errors.Is(err, supervisor.ErrUnknownService):
		h.fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, supervisor.ErrUnsupported):
		h.fail(w, http.StatusNotImplemented, err.Error())
	default:
		h.logger.Error("Request failed", "error", err)
		h.fail(w, http.StatusInternalServerError, err.Error())
	}
}

// decode reads a JSON body. It reports false after answering 400.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// audit writes a SystemLog entry for a mutation. A failed write is logged
// and otherwise ignored; the mutation it describes already happened.
func (h *Handler) audit(ctx context.Context, r *http.Request, entry models.SystemLog) {
	if entry.Level == "" {
		entry.Level = models.LevelInfo
	}
	if entry.UserID == "" {
		entry.UserID = middleware.UserID(r)
	}
	if err := h.repo.CreateLog(ctx, &entry); err != nil {
		h.logger.Warn("Failed to write audit log", "source", entry.Source, "error", err)
	}
}

func details(v map[string]interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	status := http.StatusOK
	if err := h.repo.Ping(r.Context()); err != nil {
		dbStatus = "disconnected"
		status = http.StatusServiceUnavailable
	}

	h.sendJSON(w, status, Response{
		Success: status == http.StatusOK,
		Message: "Cosmos Platform API is running",
		Data: map[string]interface{}{
			"version":   Version,
			"timestamp": time.Now().Format(time.RFC3339),
			"database":  dbStatus,
		},
	})
}
