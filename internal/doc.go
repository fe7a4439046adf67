// Package internal contains helper utilities that are intentionally private to
// authcore, including secure random identifier and code generation.
//
// # Sub-packages
//
//   - rate: Redis-backed fixed-window failure counters
//   - stores: account, user, and verification-code persistence
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
