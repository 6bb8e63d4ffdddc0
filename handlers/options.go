package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openballot/openballot/identity"
	"github.com/openballot/openballot/middleware"
	"github.com/openballot/openballot/models"
	"github.com/openballot/openballot/policy"
	"github.com/openballot/openballot/store"
)

type OptionHandler struct {
	store    *store.Store
	resolver *identity.Resolver
}

func NewOptionHandler(store *store.Store, resolver *identity.Resolver) *OptionHandler {
	return &OptionHandler{store: store, resolver: resolver}
}

// List handles GET /options with an optional ?poll_id filter
func (h *OptionHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		options []models.OptionWithVotes
		err     error
	)
	if pollID := r.URL.Query().Get("poll_id"); pollID != "" {
		options, err = h.store.ListPollOptions(r.Context(), pollID)
	} else {
		options, err = h.store.ListOptions(r.Context())
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, options)
}

// Create handles POST /options
func (h *OptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.CreateOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		middleware.WriteError(w, fmt.Errorf("text is required: %w", models.ErrValidation))
		return
	}
	if req.PollID == "" {
		middleware.WriteError(w, fmt.Errorf("poll_id is required: %w", models.ErrValidation))
		return
	}

	// Only the poll's owner may attach options, so the target poll decides
	// the authorization
	poll, err := h.store.GetPoll(r.Context(), req.PollID)
	if errors.Is(err, models.ErrNotFound) {
		middleware.WriteError(w, fmt.Errorf("poll %s does not exist: %w", req.PollID, models.ErrInvalidReference))
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionCreate, policy.Resource{Kind: policy.KindOption, OwnerKey: poll.OwnerKey}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	option, err := h.store.CreateOption(r.Context(), req.PollID, req.Text)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("option created", "poll_id", poll.ID, "option_id", option.ID)

	middleware.JSONResponse(w, http.StatusCreated, option)
}

// Get handles GET /options/{id}
func (h *OptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	option, err := h.store.GetOption(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, option)
}

// Update handles PUT /options/{id}
func (h *OptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	option, poll, err := h.loadOptionWithPoll(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionUpdate, policy.Resource{Kind: policy.KindOption, OwnerKey: poll.OwnerKey}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.UpdateOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		middleware.WriteError(w, fmt.Errorf("text is required: %w", models.ErrValidation))
		return
	}

	updated, err := h.store.UpdateOption(r.Context(), option.ID, req.Text)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("option updated", "option_id", option.ID)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /options/{id}
func (h *OptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	option, poll, err := h.loadOptionWithPoll(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionDelete, policy.Resource{Kind: policy.KindOption, OwnerKey: poll.OwnerKey}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.store.DeleteOption(r.Context(), option.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("option deleted", "option_id", option.ID, "poll_id", poll.ID)

	w.WriteHeader(http.StatusNoContent)
}

// loadOptionWithPoll fetches the option at {id} and its parent poll, whose
// owner gates writes.
func (h *OptionHandler) loadOptionWithPoll(r *http.Request) (models.Option, models.Poll, error) {
	option, err := h.store.GetOption(r.Context(), r.PathValue("id"))
	if err != nil {
		return models.Option{}, models.Poll{}, err
	}
	poll, err := h.store.GetPoll(r.Context(), option.PollID)
	if err != nil {
		return models.Option{}, models.Poll{}, err
	}
	return option, poll, nil
}
