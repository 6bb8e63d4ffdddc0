/*
Package models defines the domain types, request/response types, and the
error taxonomy shared across the API.

# Domain Types

Poll, Option, and Vote mirror the database rows. OptionWithVotes and
PollWithOptions are read-side shapes with vote counts computed at request
time.

Identity-bearing fields (Poll.OwnerKey, Vote.VoterKey, Vote.SessionKey)
carry json:"-" tags: an anonymous voter's session key doubles as their
credential and must never leak through a listing.

# Errors

The sentinel errors (ErrValidation, ErrInvalidReference, ErrDuplicateVote,
ErrForbidden, ErrNotFound, ErrUnauthenticated) are matched with errors.Is
at the HTTP boundary and mapped to 400/401/403/404 responses.
*/
package models
