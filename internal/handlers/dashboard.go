package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/redis"
)

const (
	quickStatsKey = "dashboard:quick-stats"
	quickStatsTTL = 30 * time.Second

	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type Counts struct {
	Users    int64 `json:"users"`
	Networks int64 `json:"networks"`
	Logs     int64 `json:"logs"`
}

// ActivityEntry is a log entry with its user and network names joined in.
type ActivityEntry struct {
	models.SystemLog
	UserName    string `json:"userName,omitempty"`
	NetworkName string `json:"networkName,omitempty"`
}

type Dashboard struct {
	Counts           Counts           `json:"counts"`
	NetworksByStatus map[string]int64 `json:"networksByStatus"`
	RecentNetworks   []NetworkView    `json:"recentNetworks"`
	RecentLogs       []ActivityEntry  `json:"recentLogs"`
	UnresolvedLogs   map[string]int64 `json:"unresolvedLogs"`
}

type QuickStats struct {
	Users            int64     `json:"users"`
	Networks         int64     `json:"networks"`
	ActiveNetworks   int64     `json:"activeNetworks"`
	Validators       int64     `json:"validators"`
	UnresolvedErrors int64     `json:"unresolvedErrors"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

// names resolves user and network names for activity entries, once per id.
type names struct {
	repo     repository.Repository
	users    map[string]string
	networks map[string]string
}

func (h *Handler) newNames() *names {
	return &names{repo: h.repo, users: map[string]string{}, networks: map[string]string{}}
}

func (n *names) entry(ctx context.Context, l models.SystemLog) (ActivityEntry, error) {
	e := ActivityEntry{SystemLog: l}
	if l.UserID != "" {
		name, ok := n.users[l.UserID]
		if !ok {
			u, err := n.repo.GetUser(ctx, l.UserID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return e, err
			}
			if u != nil {
				name = u.Name
			}
			n.users[l.UserID] = name
		}
		e.UserName = name
	}
	if l.NetworkID != "" {
		name, ok := n.networks[l.NetworkID]
		if !ok {
			net, err := n.repo.GetNetwork(ctx, l.NetworkID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return e, err
			}
			if net != nil {
				name = net.Name
			}
			n.networks[l.NetworkID] = name
		}
		e.NetworkName = name
	}
	return e, nil
}

func (h *Handler) activity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	logs, err := h.repo.ListLogs(ctx, repository.LogFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	n := h.newNames()
	out := make([]ActivityEntry, 0, len(logs))
	for _, l := range logs {
		e, err := n.entry(ctx, l)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var d Dashboard
	var err error

	if d.Counts.Users, err = h.repo.CountUsers(ctx); err != nil {
		h.sendError(w, err)
		return
	}
	if d.Counts.Networks, err = h.repo.CountNetworks(ctx, repository.NetworkFilter{}); err != nil {
		h.sendError(w, err)
		return
	}
	if d.Counts.Logs, err = h.repo.CountLogs(ctx, repository.LogFilter{}); err != nil {
		h.sendError(w, err)
		return
	}
	if d.NetworksByStatus, err = h.repo.CountNetworksBy(ctx, repository.ByStatus); err != nil {
		h.sendError(w, err)
		return
	}
	unresolved := false
	if d.UnresolvedLogs, err = h.repo.CountLogsByLevel(ctx, &unresolved); err != nil {
		h.sendError(w, err)
		return
	}

	recent, err := h.repo.ListNetworks(ctx, repository.NetworkFilter{Limit: 5})
	if err != nil {
		h.sendError(w, err)
		return
	}
	o := h.newOwners()
	d.RecentNetworks = make([]NetworkView, 0, len(recent))
	for _, n := range recent {
		v, err := o.view(ctx, n)
		if err != nil {
			h.sendError(w, err)
			return
		}
		d.RecentNetworks = append(d.RecentNetworks, v)
	}

	if d.RecentLogs, err = h.activity(ctx, 10); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: d})
}

// GetQuickStats serves a 30 second snapshot, from Redis when it is
// configured and from the in-process cache otherwise.
func (h *Handler) GetQuickStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.redis != nil {
		var cached QuickStats
		err := h.redis.GetJSON(ctx, quickStatsKey, &cached)
		if err == nil {
			h.sendJSON(w, http.StatusOK, Response{Success: true, Data: cached})
			return
		}
		if !errors.Is(err, redis.ErrMiss) {
			h.logger.Warn("Quick stats cache read failed", "error", err)
		}
	} else if v, ok := h.stats.Get(quickStatsKey); ok {
		h.sendJSON(w, http.StatusOK, Response{Success: true, Data: v})
		return
	}

	stats, err := h.quickStats(ctx)
	if err != nil {
		h.sendError(w, err)
		return
	}

	if h.redis != nil {
		if err := h.redis.SetJSON(ctx, quickStatsKey, stats, quickStatsTTL); err != nil {
			h.logger.Warn("Quick stats cache write failed", "error", err)
		}
	} else {
		h.stats.Set(quickStatsKey, stats, quickStatsTTL)
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}

func (h *Handler) quickStats(ctx context.Context) (QuickStats, error) {
	var s QuickStats
	var err error
	if s.Users, err = h.repo.CountUsers(ctx); err != nil {
		return s, err
	}
	if s.Networks, err = h.repo.CountNetworks(ctx, repository.NetworkFilter{}); err != nil {
		return s, err
	}
	if s.ActiveNetworks, err = h.repo.CountNetworks(ctx, repository.NetworkFilter{Status: models.StatusActive}); err != nil {
		return s, err
	}
	if s.Validators, err = h.repo.ValidatorTotal(ctx); err != nil {
		return s, err
	}
	unresolved := false
	byLevel, err := h.repo.CountLogsByLevel(ctx, &unresolved)
	if err != nil {
		return s, err
	}
	s.UnresolvedErrors = byLevel[string(models.LevelError)] + byLevel[string(models.LevelCritical)]
	s.GeneratedAt = time.Now().UTC()
	return s, nil
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultActivityLimit)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	entries, err := h.activity(r.Context(), limit)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: entries})
}
