package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/openballot/openballot/identity"
	"github.com/openballot/openballot/models"
)

// Ledger records votes and enforces the one-vote-per-identity-per-poll
// rule. The application-level existence checks are a fast path for a clean
// error; the UNIQUE (poll_id, voter_key) constraint is the source of truth
// under concurrency.
type Ledger struct {
	db *sql.DB
}

func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Filter narrows List results. Zero values mean no filtering.
type Filter struct {
	PollID   string
	VoterKey string
}

// Cast records a vote for optionID attributed to id.
func (l *Ledger) Cast(ctx context.Context, optionID string, id identity.Identity) (models.Vote, error) {
	var pollID string
	err := l.db.QueryRowContext(ctx, `
		SELECT poll_id FROM option WHERE id = $1
	`, optionID).Scan(&pollID)
	if err == sql.ErrNoRows {
		return models.Vote{}, fmt.Errorf("option %s does not exist: %w", optionID, models.ErrInvalidReference)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to resolve option: %w", err)
	}

	// Fast path: report the duplicate before attempting the insert. Two
	// concurrent requests can both pass this check; the constraint below
	// catches whichever loses.
	var taken bool
	err = l.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM vote WHERE poll_id = $1 AND voter_key = $2)
	`, pollID, id.Key()).Scan(&taken)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to check existing vote: %w", err)
	}
	if taken {
		return models.Vote{}, fmt.Errorf("identity %s on poll %s: %w", id.Key(), pollID, models.ErrDuplicateVote)
	}

	// Time-ordered v7 ids: cast order survives the ORDER BY cast_at, id
	// listing even when two casts land on the same timestamp tick
	vote := models.Vote{
		ID:       uuid.Must(uuid.NewV7()).String(),
		OptionID: optionID,
		PollID:   pollID,
		VoterKey: id.Key(),
		CastAt:   time.Now().UTC(),
	}
	if id.UserID != "" {
		vote.UserID = &id.UserID
	} else {
		vote.SessionKey = &id.SessionKey
	}

	err = l.insert(ctx, vote)
	if isTransient(err) {
		// Constraint-check races and lock timeouts are retried exactly
		// once by re-running the atomic insert
		err = l.insert(ctx, vote)
	}
	if isUniqueViolation(err) {
		return models.Vote{}, fmt.Errorf("identity %s on poll %s: %w", id.Key(), pollID, models.ErrDuplicateVote)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	return vote, nil
}

func (l *Ledger) insert(ctx context.Context, v models.Vote) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO vote (id, option_id, poll_id, voter_key, user_id, session_key, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.OptionID, v.PollID, v.VoterKey, v.UserID, v.SessionKey, v.CastAt)
	return err
}

// Get returns a single vote by id.
func (l *Ledger) Get(ctx context.Context, voteID string) (models.Vote, error) {
	return scanVote(l.db.QueryRowContext(ctx, `
		SELECT id, option_id, poll_id, voter_key, user_id, session_key, cast_at
		FROM vote WHERE id = $1
	`, voteID), voteID)
}

// List returns votes matching the filter in insertion order.
func (l *Ledger) List(ctx context.Context, f Filter) ([]models.Vote, error) {
	query := `
		SELECT id, option_id, poll_id, voter_key, user_id, session_key, cast_at
		FROM vote
	`
	conds := []string{}
	args := []interface{}{}
	if f.PollID != "" {
		args = append(args, f.PollID)
		conds = append(conds, fmt.Sprintf("poll_id = $%d", len(args)))
	}
	if f.VoterKey != "" {
		args = append(args, f.VoterKey)
		conds = append(conds, fmt.Sprintf("voter_key = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY cast_at, id"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		var userID, sessionKey sql.NullString
		if err := rows.Scan(&v.ID, &v.OptionID, &v.PollID, &v.VoterKey, &userID, &sessionKey, &v.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if userID.Valid {
			v.UserID = &userID.String
		}
		if sessionKey.Valid {
			v.SessionKey = &sessionKey.String
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}

// Update moves an existing vote to a different option. The poll-scoped
// uniqueness rule is re-validated with the vote itself excluded, so a vote
// can change options within its poll or move to a poll the voter has not
// voted on, but can never become a second vote anywhere. The UNIQUE
// constraint fires on UPDATE as well, so the rule holds even if two updates
// race.
//
// The caller is responsible for authorization (the caster only).
func (l *Ledger) Update(ctx context.Context, voteID, newOptionID string) (models.Vote, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	vote, err := scanVote(tx.QueryRowContext(ctx, `
		SELECT id, option_id, poll_id, voter_key, user_id, session_key, cast_at
		FROM vote WHERE id = $1
	`, voteID), voteID)
	if err != nil {
		return models.Vote{}, err
	}

	var newPollID string
	err = tx.QueryRowContext(ctx, `
		SELECT poll_id FROM option WHERE id = $1
	`, newOptionID).Scan(&newPollID)
	if err == sql.ErrNoRows {
		return models.Vote{}, fmt.Errorf("option %s does not exist: %w", newOptionID, models.ErrInvalidReference)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to resolve option: %w", err)
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE poll_id = $1 AND voter_key = $2 AND id != $3
		)
	`, newPollID, vote.VoterKey, voteID).Scan(&taken)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to check existing vote: %w", err)
	}
	if taken {
		return models.Vote{}, fmt.Errorf("identity %s on poll %s: %w", vote.VoterKey, newPollID, models.ErrDuplicateVote)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE vote SET option_id = $1, poll_id = $2 WHERE id = $3
	`, newOptionID, newPollID, voteID)
	if isUniqueViolation(err) {
		return models.Vote{}, fmt.Errorf("identity %s on poll %s: %w", vote.VoterKey, newPollID, models.ErrDuplicateVote)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to update vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Vote{}, fmt.Errorf("failed to commit vote update: %w", err)
	}

	vote.OptionID = newOptionID
	vote.PollID = newPollID
	return vote, nil
}

// Remove deletes a vote. The caller is responsible for authorization.
func (l *Ledger) Remove(ctx context.Context, voteID string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM vote WHERE id = $1`, voteID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("vote %s: %w", voteID, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVote(row rowScanner, voteID string) (models.Vote, error) {
	var v models.Vote
	var userID, sessionKey sql.NullString
	err := row.Scan(&v.ID, &v.OptionID, &v.PollID, &v.VoterKey, &userID, &sessionKey, &v.CastAt)
	if err == sql.ErrNoRows {
		return models.Vote{}, fmt.Errorf("vote %s: %w", voteID, models.ErrNotFound)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}
	if userID.Valid {
		v.UserID = &userID.String
	}
	if sessionKey.Valid {
		v.SessionKey = &sessionKey.String
	}
	return v, nil
}

// isUniqueViolation detects the (poll_id, voter_key) constraint firing on
// either backend: lib/pq reports SQLSTATE 23505, modernc.org/sqlite wraps
// the SQLite message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isTransient reports storage failures worth one retry: serialization
// failures and deadlocks on PostgreSQL, SQLITE_BUSY on SQLite.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "SQLITE_BUSY")
}
