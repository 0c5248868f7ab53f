// Package jwtcookie authenticates HTTP requests from JWTs split across
// browser cookies, plus the usual Authorization header path.
//
// Cookie reconstitution:
//   - The token issuer splits a JWT into a header.payload cookie and a
//     signature cookie. middleware/cookieware merges them back into one
//     bearer token on the request context before authentication runs, and
//     reports the outcome through a MetricsSink. A request that never sets
//     the split cookies is untouched.
//
// Authentication outcomes:
//   - RequestAuthenticator locates a credential (header first, then the
//     reconstituted cookie), decodes it, and produces an AuthOutcome that is
//     authenticated, deferred, or rejected. Header credentials always fail
//     hard. Cookie credentials fail hard by default; enable forgiving mode
//     to defer instead, letting another authentication scheme run.
//   - Cookie-borne credentials additionally pass a CSRF check, since cookies
//     ride along on cross-site requests. Header credentials skip it.
//
// Identity resolution:
//   - IdentityResolver maps validated claims onto the local User record,
//     creating it on first sight and merging claim attributes into it. Dict
//     attributes merge additively, scalars overwrite, and the user is saved
//     at most once per request. Normalizers (phone numbers by default) run
//     before comparison so ingest formats don't churn the row.
package jwtcookie
