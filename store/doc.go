/*
Package store owns Poll and Option persistence. It is pure data access:
no voting logic lives here, and the vote counts it reports are computed
from the vote table at read time, never cached.

Deletes cascade through the schema's foreign keys: removing a poll removes
its options and their votes, removing an option removes its votes.
*/
package store
