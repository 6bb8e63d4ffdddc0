/*
Package policy holds the access rules in one Authorize function instead of
a permission class per resource:

	err := policy.Authorize(id, policy.ActionDelete, policy.Resource{
		Kind:     policy.KindVote,
		OwnerKey: vote.VoterKey,
	})

Reads are open. Vote creation is open (the duplicate-vote constraint is the
gate). Poll creation needs authentication. Option creation and all
update/delete operations need the owning identity, and vote mutation is
additionally closed to anonymous sessions entirely.
*/
package policy
