/*
Package router defines HTTP routes for the openballot API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

	GET  /             - resource directory
	GET  /health

	GET    /polls          GET    /options          GET    /votes
	POST   /polls          POST   /options          POST   /votes
	GET    /polls/{id}     GET    /options/{id}     GET    /votes/{id}
	PUT    /polls/{id}     PUT    /options/{id}     PUT    /votes/{id}
	DELETE /polls/{id}     DELETE /options/{id}     DELETE /votes/{id}

The router wires the shared dependencies (identity resolver, poll store,
vote ledger) into the handlers and wraps every route with request logging.
*/
package router
