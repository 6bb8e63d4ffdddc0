/*
Package handlers contains the HTTP request handlers for the openballot API.

Each handler is a struct with its dependencies injected at construction:

	pollHandler := handlers.NewPollHandler(store, resolver)
	voteHandler := handlers.NewVoteHandler(ledger, resolver)

Handlers are orchestration only: resolve the caller's identity, load the
target entities, ask the policy package for authorization, call the store
or ledger, and map the result through middleware.JSONResponse /
middleware.WriteError. No business logic lives here.

# Resources

	GET    /polls, /options, /votes     - open listings
	POST   /polls                       - authenticated
	POST   /options                     - poll owner
	POST   /votes                       - anyone; session minted on first use
	PUT    /votes/{id}, DELETE /votes/{id} - authenticated caster only

Vote listings take ?poll_id=... and ?mine=true filters.
*/
package handlers
