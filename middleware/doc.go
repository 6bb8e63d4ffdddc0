/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /polls", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, err) // maps the error taxonomy to a status

WriteError translates models sentinel errors to 400/401/403/404; anything
else becomes an opaque 500 and the detail stays in the server log.

# CORS

	server := http.Server{Handler: middleware.CORS(mux)}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers Content-Type
and Authorization, with credentials so the session cookie round-trips.
*/
package middleware
