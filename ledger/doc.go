/*
Package ledger is the vote-integrity core: it creates, lists, updates, and
removes vote records while holding the invariant that a voter identity
casts at most one vote per poll.

# Casting

	vote, err := ledger.Cast(ctx, optionID, id)

Cast resolves the option to its poll, rejects a duplicate with a clean
error when it can see one, and inserts the row. The duplicate check that
actually counts is the database's UNIQUE (poll_id, voter_key) constraint:
two concurrent casts for the same (poll, identity) both pass the
application check, and the constraint turns exactly one of the inserts into
ErrDuplicateVote. Transient storage failures (serialization, deadlock,
SQLITE_BUSY) are retried once by re-running the insert.

# Updating

Update re-validates the poll-scoped uniqueness rule - excluding the vote
being updated - inside a transaction before changing the option, and the
constraint backs it up on the UPDATE itself. A vote can therefore switch
options but can never become a second vote on any poll.

Authorization is the caller's job (see the policy package); the ledger
only knows about vote integrity.
*/
package ledger
