/*
Package identity resolves an inbound request to a stable voter identity.

# Identity

An Identity is either an authenticated user id (from a JWT bearer token) or
an anonymous session key (from an opaque cookie). Key() yields the derived
column ("user:<id>" / "session:<key>") that the vote table's uniqueness
constraint is keyed on; the prefixes guarantee a user and a session can
never collide.

# Resolution

	rs := identity.NewResolver(cfg.JWTSecret, cfg.SessionCookie)
	id, err := rs.Resolve(w, r)

Authorization: Bearer tokens are verified as HS256 JWTs carrying an "id"
claim. Token issuance (registration/login) lives outside this service.
Requests without credentials get a session key minted on first use and
attached to the response as an HttpOnly cookie, so the same caller resolves
to the same identity on every subsequent request.
*/
package identity
