// Package jwt issues and parses the short-lived access tokens minted
// alongside sessions.
//
// Tokens carry the user ID and session ID. The default signing method is
// ed25519; HS256 is available for single-service deployments that prefer a
// shared secret. Token lifetime defaults to one hour and is configured
// through the engine's JWT duration option.
//
// # What this package must NOT do
//
//   - Touch Redis or any session state. A parsed token is a claim, not a
//     session validity decision.
//   - Import any other authcore package.
package jwt
