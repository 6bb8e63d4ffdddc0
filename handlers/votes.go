package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openballot/openballot/identity"
	"github.com/openballot/openballot/ledger"
	"github.com/openballot/openballot/middleware"
	"github.com/openballot/openballot/models"
	"github.com/openballot/openballot/policy"
)

type VoteHandler struct {
	ledger   *ledger.Ledger
	resolver *identity.Resolver
}

func NewVoteHandler(ledger *ledger.Ledger, resolver *identity.Resolver) *VoteHandler {
	return &VoteHandler{ledger: ledger, resolver: resolver}
}

// List handles GET /votes. Optional filters: ?poll_id=... and ?mine=true
// (the caller's own votes, by resolved identity).
func (h *VoteHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := ledger.Filter{PollID: r.URL.Query().Get("poll_id")}

	if r.URL.Query().Get("mine") == "true" {
		id, err := h.resolver.Resolve(w, r)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		filter.VoterKey = id.Key()
	}

	votes, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, votes)
}

// Create handles POST /votes. Any identity may cast; a session is minted
// for first-time anonymous voters. The one-vote-per-poll rule is the gate.
func (h *VoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionCreate, policy.Resource{Kind: policy.KindVote}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.WriteError(w, fmt.Errorf("option_id is required: %w", models.ErrValidation))
		return
	}

	vote, err := h.ledger.Cast(r.Context(), req.OptionID, id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("vote cast", "vote_id", vote.ID, "poll_id", vote.PollID, "option_id", vote.OptionID, "authenticated", id.Authenticated())

	middleware.JSONResponse(w, http.StatusCreated, vote)
}

// Get handles GET /votes/{id}
func (h *VoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	vote, err := h.ledger.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, vote)
}

// Update handles PUT /votes/{id}: the authenticated caster may move their
// vote to another option, re-validated against the one-vote-per-poll rule.
func (h *VoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	vote, err := h.ledger.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionUpdate, policy.Resource{Kind: policy.KindVote, OwnerKey: vote.VoterKey}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.UpdateVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.WriteError(w, fmt.Errorf("option_id is required: %w", models.ErrValidation))
		return
	}

	updated, err := h.ledger.Update(r.Context(), vote.ID, req.OptionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("vote updated", "vote_id", vote.ID, "option_id", updated.OptionID)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /votes/{id}: authenticated caster only. Anonymous
// sessions are refused outright, even for their own vote.
func (h *VoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	vote, err := h.ledger.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := policy.Authorize(id, policy.ActionDelete, policy.Resource{Kind: policy.KindVote, OwnerKey: vote.VoterKey}); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.ledger.Remove(r.Context(), vote.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("vote removed", "vote_id", vote.ID, "poll_id", vote.PollID)

	w.WriteHeader(http.StatusNoContent)
}
