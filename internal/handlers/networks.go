package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/validation"
)

// OwnerRef is the joined owner of a network. It is null when the network
// has no owner or the owner has been deleted.
type OwnerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type NetworkView struct {
	models.Network
	Owner *OwnerRef `json:"owner"`
}

type StatusRequest struct {
	Status models.NetworkStatus `json:"status"`
}

type NetworkStats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"byStatus"`
	ByDeploymentType  map[string]int64 `json:"byDeploymentType"`
	TotalValidators   int64            `json:"totalValidators"`
	AverageNodeCount  float64          `json:"averageNodeCount"`
	CreatedLast30Days int64            `json:"createdLast30Days"`
}

// owners resolves owner ids once per request.
type owners struct {
	repo repository.Repository
	seen map[string]*OwnerRef
}

func (h *Handler) newOwners() *owners {
	return &owners{repo: h.repo, seen: map[string]*OwnerRef{}}
}

func (o *owners) get(ctx context.Context, id string) (*OwnerRef, error) {
	if id == "" {
		return nil, nil
	}
	if ref, ok := o.seen[id]; ok {
		return ref, nil
	}
	u, err := o.repo.GetUser(ctx, id)
	var ref *OwnerRef
	switch {
	case err == nil:
		ref = &OwnerRef{ID: u.ID, Name: u.Name, Email: u.Email}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	o.seen[id] = ref
	return ref, nil
}

func (o *owners) view(ctx context.Context, n models.Network) (NetworkView, error) {
	ref, err := o.get(ctx, n.Owner)
	return NetworkView{Network: n, Owner: ref}, err
}

func (h *Handler) GetNetworks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.NetworkFilter{Owner: q.Get("owner")}

	if s := q.Get("status"); s != "" {
		f.Status = models.NetworkStatus(s)
		if !f.Status.Valid() {
			h.fail(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}
	if t := q.Get("deploymentType"); t != "" {
		f.DeploymentType = models.DeploymentType(t)
		if !f.DeploymentType.Valid() {
			h.fail(w, http.StatusBadRequest, "Invalid deploymentType filter")
			return
		}
	}

	networks, err := h.repo.ListNetworks(r.Context(), f)
	if err != nil {
		h.sendError(w, err)
		return
	}

	o := h.newOwners()
	views := make([]NetworkView, 0, len(networks))
	for _, n := range networks {
		v, err := o.view(r.Context(), n)
		if err != nil {
			h.sendError(w, err)
			return
		}
		views = append(views, v)
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: views})
}

func (h *Handler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	n, err := h.repo.GetNetwork(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.networkError(w, err)
		return
	}

	v, err := h.newOwners().view(r.Context(), *n)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: v})
}

// checkOwner reports whether owner is empty or names an existing user.
func (h *Handler) checkOwner(ctx context.Context, owner string) (bool, error) {
	if owner == "" {
		return true, nil
	}
	_, err := h.repo.GetUser(ctx, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func prepareValidators(vs []models.Validator) {
	for i := range vs {
		if vs[i].ID == "" {
			vs[i].ID = uuid.NewString()
		}
		if vs[i].Status == "" {
			vs[i].Status = models.ValidatorInactive
		}
	}
}

func (h *Handler) CreateNetwork(w http.ResponseWriter, r *http.Request) {
	var n models.Network
	if !h.decode(w, r, &n) {
		return
	}

	n.Name = strings.TrimSpace(n.Name)
	n.ChainID = strings.TrimSpace(n.ChainID)
	if n.Name == "" || n.ChainID == "" {
		h.fail(w, http.StatusBadRequest, "Name and chainId are required")
		return
	}

	n.ID = ""
	n.CreatedAt, n.UpdatedAt = time.Time{}, time.Time{}
	n.DeployedAt, n.LastActiveAt = nil, nil
	requested := n.Status
	if requested == "" {
		requested = models.StatusPlanned
	}
	n.Status = models.StatusPlanned
	if n.DeploymentType == "" {
		n.DeploymentType = models.DeploymentLocal
	}
	if n.Validators == nil {
		n.Validators = []models.Validator{}
	}
	if n.Modules == nil {
		n.Modules = []models.Module{}
	}
	prepareValidators(n.Validators)
	n.SetStatus(requested, time.Now().UTC())

	if errs := validation.Network(n); !errs.Empty() {
		h.invalid(w, errs)
		return
	}
	ok, err := h.checkOwner(r.Context(), n.Owner)
	if err != nil {
		h.sendError(w, err)
		return
	}
	if !ok {
		h.fail(w, http.StatusBadRequest, "Owner not found")
		return
	}

	if err := h.repo.CreateNetwork(r.Context(), &n); err != nil {
		h.networkError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:    "networks",
		Message:   fmt.Sprintf("Network created: %s (%s)", n.Name, n.ChainID),
		NetworkID: n.ID,
	})
	h.logger.Info("Network created", "network_id", n.ID, "chain_id", n.ChainID)
	h.sendJSON(w, http.StatusCreated, Response{Success: true, Message: "Network created successfully", Data: n})
}

func (h *Handler) UpdateNetwork(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch models.NetworkPatch
	if !h.decode(w, r, &patch) {
		return
	}

	n, err := h.repo.GetNetwork(r.Context(), id)
	if err != nil {
		h.networkError(w, err)
		return
	}
	prevOwner := n.Owner

	patch.Apply(n)
	if errs := validation.Network(*n); !errs.Empty() {
		h.invalid(w, errs)
		return
	}
	if n.Owner != prevOwner {
		ok, err := h.checkOwner(r.Context(), n.Owner)
		if err != nil {
			h.sendError(w, err)
			return
		}
		if !ok {
			h.fail(w, http.StatusBadRequest, "Owner not found")
			return
		}
	}

	if err := h.repo.UpdateNetwork(r.Context(), n); err != nil {
		h.networkError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:    "networks",
		Message:   fmt.Sprintf("Network updated: %s", n.Name),
		NetworkID: n.ID,
	})
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Network updated successfully", Data: n})
}

func (h *Handler) DeleteNetwork(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	n, err := h.repo.GetNetwork(r.Context(), id)
	if err != nil {
		h.networkError(w, err)
		return
	}
	if err := h.repo.DeleteNetwork(r.Context(), id); err != nil {
		h.networkError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Level:     models.LevelWarning,
		Source:    "networks",
		Message:   fmt.Sprintf("Network deleted: %s (%s)", n.Name, n.ChainID),
		NetworkID: id,
	})
	h.logger.Info("Network deleted", "network_id", id)
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Network deleted successfully"})
}

func (h *Handler) UpdateNetworkStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		h.fail(w, http.StatusBadRequest, "Status must be one of planned, deploying, active, error, stopped, terminated")
		return
	}

	n, err := h.repo.GetNetwork(r.Context(), id)
	if err != nil {
		h.networkError(w, err)
		return
	}

	prev := n.SetStatus(req.Status, time.Now().UTC())
	if err := h.repo.UpdateNetwork(r.Context(), n); err != nil {
		h.networkError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:    "networks",
		Message:   fmt.Sprintf("Network %s status changed from %s to %s", n.Name, prev, n.Status),
		Details:   details(map[string]interface{}{"from": prev, "to": n.Status}),
		NetworkID: n.ID,
	})
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Network status updated", Data: n})
}

func (h *Handler) GetNetworkStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var stats NetworkStats
	var err error

	if stats.ByStatus, err = h.repo.CountNetworksBy(ctx, repository.ByStatus); err != nil {
		h.sendError(w, err)
		return
	}
	if stats.ByDeploymentType, err = h.repo.CountNetworksBy(ctx, repository.ByDeploymentType); err != nil {
		h.sendError(w, err)
		return
	}
	if stats.TotalValidators, err = h.repo.ValidatorTotal(ctx); err != nil {
		h.sendError(w, err)
		return
	}
	since := time.Now().UTC().AddDate(0, 0, -30)
	if stats.CreatedLast30Days, err = h.repo.CountNetworks(ctx, repository.NetworkFilter{CreatedSince: &since}); err != nil {
		h.sendError(w, err)
		return
	}

	networks, err := h.repo.ListNetworks(ctx, repository.NetworkFilter{})
	if err != nil {
		h.sendError(w, err)
		return
	}
	stats.Total = int64(len(networks))
	if stats.Total > 0 {
		nodes := 0
		for _, n := range networks {
			nodes += n.NodeCount
		}
		stats.AverageNodeCount = math.Round(float64(nodes)/float64(stats.Total)*100) / 100
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}

func (h *Handler) AddValidator(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var v models.Validator
	if !h.decode(w, r, &v) {
		return
	}
	v.ID = ""
	vs := []models.Validator{v}
	prepareValidators(vs)
	v = vs[0]
	if errs := validation.NetworkValidator(v); !errs.Empty() {
		h.invalid(w, errs)
		return
	}

	n, err := h.repo.GetNetwork(r.Context(), id)
	if err != nil {
		h.networkError(w, err)
		return
	}
	n.Validators = append(n.Validators, v)
	if err := h.repo.UpdateNetwork(r.Context(), n); err != nil {
		h.networkError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:    "networks",
		Message:   fmt.Sprintf("Validator %s added to %s", v.Name, n.Name),
		Details:   details(map[string]interface{}{"validatorId": v.ID}),
		NetworkID: n.ID,
	})
	h.sendJSON(w, http.StatusCreated, Response{Success: true, Message: "Validator added", Data: n})
}

func (h *Handler) RemoveValidator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, validatorID := vars["id"], vars["validatorId"]

	n, err := h.repo.GetNetwork(r.Context(), id)
	if err != nil {
		h.networkError(w, err)
		return
	}

	at := -1
	for i, v := range n.Validators {
		if v.ID == validatorID {
			at = i
			break
		}
	}
	if at < 0 {
		h.fail(w, http.StatusNotFound, "Validator not found")
		return
	}
	removed := n.Validators[at]
	n.Validators = append(n.Validators[:at], n.Validators[at+1:]...)

	if err := h.repo.UpdateNetwork(r.Context(), n); err != nil {
		h.networkError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:    "networks",
		Message:   fmt.Sprintf("Validator %s removed from %s", removed.Name, n.Name),
		Details:   details(map[string]interface{}{"validatorId": removed.ID}),
		NetworkID: n.ID,
	})
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Validator removed", Data: n})
}

func (h *Handler) networkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.fail(w, http.StatusNotFound, "Network not found")
	case errors.Is(err, repository.ErrDuplicate):
		h.fail(w, http.StatusBadRequest, "A network with this chain ID already exists")
	default:
		h.sendError(w, err)
	}
}
