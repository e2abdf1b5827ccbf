// Package auth guards the casting-agency API. Every protected operation runs
// the chain extract -> verify -> permission check before its handler: the
// bearer token is pulled from the Authorization header, verified against the
// identity provider's published signing keys, and its permissions claim is
// checked against the operation's required permission. Any failure rejects
// the request with a single structured Error and the handler never runs.
//
// Token verification lives in the validator subpackage and signing-key
// retrieval in the jwks subpackage; this package composes them and owns the
// failure taxonomy they report with.
package auth
