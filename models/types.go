package models

import "time"

// Request types

type CreatePollRequest struct {
	Question string `json:"question"`
}

type UpdatePollRequest struct {
	Question string `json:"question"`
}

type CreateOptionRequest struct {
	PollID string `json:"poll_id"`
	Text   string `json:"text"`
}

type UpdateOptionRequest struct {
	Text string `json:"text"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

type UpdateVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Domain types

type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	OwnerKey  string    `json:"-"` // Write-authorization only, never exposed
	CreatedAt time.Time `json:"created_at"`
}

type Option struct {
	ID     string `json:"id"`
	PollID string `json:"poll_id"`
	Text   string `json:"text"`
}

// OptionWithVotes is an Option plus its vote count, computed from current
// storage state at read time.
type OptionWithVotes struct {
	ID        string `json:"id"`
	PollID    string `json:"poll_id"`
	Text      string `json:"text"`
	VoteCount int    `json:"vote_count"`
}

type PollWithOptions struct {
	Poll    Poll              `json:"poll"`
	Options []OptionWithVotes `json:"options"`
}

type Vote struct {
	ID       string `json:"id"`
	OptionID string `json:"option_id"`
	PollID   string `json:"poll_id"`
	// VoterKey is the derived identity column ("user:<id>" or
	// "session:<token>"). The session form embeds the caller's credential,
	// so the raw key is never serialized.
	VoterKey   string    `json:"-"`
	UserID     *string   `json:"user_id,omitempty"`
	SessionKey *string   `json:"-"` // Never expose in JSON
	CastAt     time.Time `json:"cast_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// APIRoot lists the top-level resource collections.
type APIRoot struct {
	Polls   string `json:"polls"`
	Options string `json:"options"`
	Votes   string `json:"votes"`
}
