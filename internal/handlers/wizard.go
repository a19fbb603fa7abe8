package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/wizard"
)

// DraftView is a draft with its chart series.
type DraftView struct {
	*wizard.Draft
	Derived wizard.Derived `json:"derived"`
}

func viewOf(d *wizard.Draft) DraftView {
	return DraftView{Draft: d, Derived: d.Derived()}
}

type FieldRequest struct {
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

type SliderRequest struct {
	Path  string  `json:"path"`
	Value float64 `json:"value"`
}

type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

type DraftValidatorRequest struct {
	Index     *int                  `json:"index"`
	Validator models.ValidatorEntry `json:"validator"`
}

type SubmitRequest struct {
	Confirm bool `json:"confirm"`
}

type EstimateRequest struct {
	Provider     models.Provider `json:"provider"`
	InstanceType string          `json:"instanceType"`
	DiskSizeGB   int             `json:"diskSizeGB"`
	Nodes        int             `json:"nodes"`
}

type SubmitResponse struct {
	Network  *models.Network `json:"network"`
	Progress wizard.Progress `json:"progress"`
}

func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.wizard.CreateDraft(r.Context(), middleware.UserID(r))
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, Response{Success: true, Message: "Draft created", Data: viewOf(d)})
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.wizard.GetDraft(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: viewOf(d)})
}

func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.DeleteDraft(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Draft deleted"})
}

func (h *Handler) SetDraftField(w http.ResponseWriter, r *http.Request) {
	var req FieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		h.fail(w, http.StatusBadRequest, "path is required")
		return
	}

	d, err := h.wizard.SetField(r.Context(), mux.Vars(r)["id"], req.Path, req.Value)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: viewOf(d)})
}

func (h *Handler) SetDraftSlider(w http.ResponseWriter, r *http.Request) {
	var req SliderRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		h.fail(w, http.StatusBadRequest, "path is required")
		return
	}

	d, err := h.wizard.SetSlider(r.Context(), mux.Vars(r)["id"], req.Path, req.Value)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: viewOf(d)})
}

func (h *Handler) ToggleCustomValidators(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if !h.decode(w, r, &req) {
		return
	}

	d, err := h.wizard.ToggleCustomValidators(r.Context(), mux.Vars(r)["id"], req.Enabled)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: viewOf(d)})
}

// PutDraftValidator appends a custom validator, or replaces the one at
// index when an index is given.
func (h *Handler) PutDraftValidator(w http.ResponseWriter, r *http.Request) {
	var req DraftValidatorRequest
	if !h.decode(w, r, &req) {
		return
	}

	d, at, err := h.wizard.AddOrUpdateValidator(r.Context(), mux.Vars(r)["id"], req.Validator, req.Index)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Validator saved at index " + strconv.Itoa(at),
		Data:    viewOf(d),
	})
}

func (h *Handler) RemoveDraftValidator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		h.fail(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	d, err := h.wizard.RemoveValidator(r.Context(), vars["id"], index)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: viewOf(d)})
}

func (h *Handler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.wizard.Validate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{
		Success: len(d.Errors) == 0,
		Data:    viewOf(d),
	})
}

func (h *Handler) EstimateDraft(w http.ResponseWriter, r *http.Request) {
	est, err := h.wizard.Estimate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: est})
}

func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}

	network, progress, err := h.wizard.Submit(r.Context(), mux.Vars(r)["id"], req.Confirm, middleware.UserID(r))
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Network submitted for deployment",
		Data:    SubmitResponse{Network: network, Progress: progress},
	})
}

// EstimateCost prices a deployment without a draft.
func (h *Handler) EstimateCost(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Provider.Valid() {
		h.fail(w, http.StatusBadRequest, "Provider must be one of aws, gcp, azure, digitalocean, local")
		return
	}
	if req.Nodes < 1 || req.DiskSizeGB < 0 {
		h.fail(w, http.StatusBadRequest, "nodes must be at least 1 and diskSizeGB cannot be negative")
		return
	}

	est, err := wizard.EstimateMonthlyCost(req.Provider, req.InstanceType, req.DiskSizeGB, req.Nodes)
	if err != nil {
		h.sendError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: est})
}

func (h *Handler) GetDeployment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.wizard.Deployer().Progress(mux.Vars(r)["networkId"])
	if !ok {
		h.fail(w, http.StatusNotFound, "No deployment found for this network")
		return
	}
	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: p})
}
