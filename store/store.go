package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openballot/openballot/models"
)

// Store owns Poll and Option rows. It holds no voting logic; vote counts it
// reports are computed from the vote table at read time.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreatePoll inserts a new poll owned by ownerKey.
func (s *Store) CreatePoll(ctx context.Context, question, ownerKey string) (models.Poll, error) {
	poll := models.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		OwnerKey:  ownerKey,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poll (id, question, owner_key, created_at)
		VALUES ($1, $2, $3, $4)
	`, poll.ID, poll.Question, poll.OwnerKey, poll.CreatedAt)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}

	return poll, nil
}

func (s *Store) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	var poll models.Poll
	var ownerKey sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question, owner_key, created_at FROM poll WHERE id = $1
	`, id).Scan(&poll.ID, &poll.Question, &ownerKey, &poll.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Poll{}, fmt.Errorf("poll %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	poll.OwnerKey = ownerKey.String
	return poll, nil
}

// ListPolls returns all polls newest first, each with its options and their
// current vote counts.
func (s *Store) ListPolls(ctx context.Context) ([]models.PollWithOptions, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, owner_key, created_at
		FROM poll
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	polls := []models.PollWithOptions{}
	for rows.Next() {
		var poll models.Poll
		var ownerKey sql.NullString
		if err := rows.Scan(&poll.ID, &poll.Question, &ownerKey, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		poll.OwnerKey = ownerKey.String
		polls = append(polls, models.PollWithOptions{Poll: poll})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polls: %w", err)
	}

	for i := range polls {
		options, err := s.ListPollOptions(ctx, polls[i].Poll.ID)
		if err != nil {
			return nil, err
		}
		polls[i].Options = options
	}

	return polls, nil
}

// UpdatePoll replaces the poll's question. created_at and owner are
// immutable.
func (s *Store) UpdatePoll(ctx context.Context, id, question string) (models.Poll, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll SET question = $1 WHERE id = $2
	`, question, id)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to update poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Poll{}, fmt.Errorf("poll %s: %w", id, models.ErrNotFound)
	}
	return s.GetPoll(ctx, id)
}

// DeletePoll removes a poll. Its options and their votes go with it via
// ON DELETE CASCADE.
func (s *Store) DeletePoll(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM poll WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("poll %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// CreateOption attaches a new option to an existing poll.
func (s *Store) CreateOption(ctx context.Context, pollID, text string) (models.Option, error) {
	// Verify the poll exists first for a clean error; the FK backs this up
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to check poll: %w", err)
	}
	if !exists {
		return models.Option{}, fmt.Errorf("poll %s does not exist: %w", pollID, models.ErrInvalidReference)
	}

	option := models.Option{
		ID:     uuid.NewString(),
		PollID: pollID,
		Text:   text,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO option (id, poll_id, text)
		VALUES ($1, $2, $3)
	`, option.ID, option.PollID, option.Text)
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to insert option: %w", err)
	}

	return option, nil
}

func (s *Store) GetOption(ctx context.Context, id string) (models.Option, error) {
	var option models.Option
	err := s.db.QueryRowContext(ctx, `
		SELECT id, poll_id, text FROM option WHERE id = $1
	`, id).Scan(&option.ID, &option.PollID, &option.Text)
	if err == sql.ErrNoRows {
		return models.Option{}, fmt.Errorf("option %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to query option: %w", err)
	}
	return option, nil
}

// ListOptions returns every option across all polls with vote counts.
func (s *Store) ListOptions(ctx context.Context) ([]models.OptionWithVotes, error) {
	return s.listOptions(ctx, "")
}

// ListPollOptions returns one poll's options with vote counts.
func (s *Store) ListPollOptions(ctx context.Context, pollID string) ([]models.OptionWithVotes, error) {
	return s.listOptions(ctx, pollID)
}

func (s *Store) listOptions(ctx context.Context, pollID string) ([]models.OptionWithVotes, error) {
	query := `
		SELECT o.id, o.poll_id, o.text, COUNT(v.id)
		FROM option o
		LEFT JOIN vote v ON v.option_id = o.id
	`
	args := []interface{}{}
	if pollID != "" {
		query += ` WHERE o.poll_id = $1`
		args = append(args, pollID)
	}
	query += `
		GROUP BY o.id, o.poll_id, o.text
		ORDER BY o.id
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.OptionWithVotes{}
	for rows.Next() {
		var opt models.OptionWithVotes
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}

	return options, nil
}

// UpdateOption replaces the option's text. The parent poll is immutable.
func (s *Store) UpdateOption(ctx context.Context, id, text string) (models.Option, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE option SET text = $1 WHERE id = $2
	`, text, id)
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to update option: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Option{}, fmt.Errorf("option %s: %w", id, models.ErrNotFound)
	}
	return s.GetOption(ctx, id)
}

// DeleteOption removes an option and, via cascade, its votes.
func (s *Store) DeleteOption(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM option WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("option %s: %w", id, models.ErrNotFound)
	}
	return nil
}
