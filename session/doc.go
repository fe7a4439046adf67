// Package session provides Redis-backed session persistence with compact
// binary session encoding.
//
// # Lifetime model
//
// A session is valid while BOTH hold: now-CreatedAt <= TotalDuration and
// now-LastActiveAt <= InactiveDuration. The Redis key TTL is set to the
// absolute lifetime, so the absolute cap is enforced eagerly; the inactivity
// cap is checked lazily on read. Touching a session never extends the
// absolute cap.
//
// # Concurrency
//
// Create, Touch, Delete, and Invalidate each execute as a single Redis Lua
// script. Redis serializes scripts, so a session created concurrently with an
// invalidation sweep for the same user is deterministically either included
// in the sweep or created after it, never left half-registered.
//
// # What this package must NOT do
//
//   - Import authcore or jwt (no upward imports).
//   - Make authentication or authorization decisions.
//   - Store secrets in [Session] fields.
package session
