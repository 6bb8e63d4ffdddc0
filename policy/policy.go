package policy

import (
	"fmt"

	"github.com/openballot/openballot/identity"
	"github.com/openballot/openballot/models"
)

// Action is what the caller is trying to do to a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource kinds.
const (
	KindPoll   = "poll"
	KindOption = "option"
	KindVote   = "vote"
)

// Resource is the target of an action. OwnerKey is the identity key that
// may mutate it: the creating identity for polls, the parent poll's owner
// for options, and the casting identity for votes.
type Resource struct {
	Kind     string
	OwnerKey string
}

// Authorize decides whether an identity may perform an action on a
// resource. It returns nil to allow, ErrUnauthenticated when the action
// needs a logged-in caller, and ErrForbidden when the caller is
// authenticated but not the owner.
//
// Rules:
//   - read: always allowed, any identity
//   - create vote: always allowed - the duplicate-vote constraint is the
//     real gate, not authentication
//   - create poll: authenticated callers only
//   - create option: authenticated poll owner only
//   - update/delete poll or option: authenticated owner only
//   - update/delete vote: authenticated caster only; anonymous voters can
//     never mutate votes, even their own, so a session cannot
//     delete-then-revote its way past the one-vote rule
func Authorize(id identity.Identity, action Action, res Resource) error {
	if action == ActionRead {
		return nil
	}
	if action == ActionCreate && res.Kind == KindVote {
		return nil
	}

	if !id.Authenticated() {
		if res.Kind == KindVote {
			// Anonymous vote mutation is forbidden outright, not a
			// login prompt
			return fmt.Errorf("anonymous voters may not %s votes: %w", action, models.ErrForbidden)
		}
		return fmt.Errorf("%s %s: %w", action, res.Kind, models.ErrUnauthenticated)
	}

	if action == ActionCreate && res.Kind == KindPoll {
		return nil
	}

	// Everything else is owner-only: option create (poll owner), and all
	// updates/deletes.
	if res.OwnerKey == "" || res.OwnerKey != id.Key() {
		return fmt.Errorf("%s %s requires ownership: %w", action, res.Kind, models.ErrForbidden)
	}
	return nil
}
