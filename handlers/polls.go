package handlers

import (
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

type PollHandler struct {
	store    *store.Store
	resolver *identity.Resolver
}

func NewPollHandler(store *store.Store, resolver *identity.Resolver) *PollHandler {
	return &PollHandler{store: store, resolver: resolver}
}

// List handles GET /polls
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	polls, err := h.store.ListPolls(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// Create handles POST /polls
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionCreate, policy.Resource{Kind: policy.KindPoll}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		middleware.WriteError(w, fmt.Errorf("question is required: %w", models.ErrValidation))
		return
	}

	poll, err := h.store.CreatePoll(r.Context(), req.Question, id.Key())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "owner", id.Key())

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// Get handles GET /polls/{id}
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	poll, err := h.store.GetPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	options, err := h.store.ListPollOptions(r.Context(), poll.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithOptions{Poll: poll, Options: options})
}

// Update handles PUT /polls/{id}
func (h *PollHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	poll, err := h.store.GetPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionUpdate, policy.Resource{Kind: policy.KindPoll, OwnerKey: poll.OwnerKey}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		middleware.WriteError(w, fmt.Errorf("question is required: %w", models.ErrValidation))
		return
	}

	updated, err := h.store.UpdatePoll(r.Context(), poll.ID, req.Question)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("poll updated", "poll_id", poll.ID)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /polls/{id}
func (h *PollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	poll, err := h.store.GetPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionDelete, policy.Resource{Kind: policy.KindPoll, OwnerKey: poll.OwnerKey}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.store.DeletePoll(r.Context(), poll.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("poll deleted", "poll_id", poll.ID)

	w.WriteHeader(http.StatusNoContent)
}
