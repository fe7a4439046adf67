// Package stores provides Redis-backed persistence for accounts, users, and
// short-lived verification codes.
//
// # Design
//
// Accounts and users are Redis hashes so the account-creation script can
// substitute a linked user ID field without re-encoding a record. Verification
// codes are versioned binary-encoded strings with a TTL; a code is addressed
// by (account, purpose), so issuing a new code atomically supersedes the
// previous one. Consume uses a WATCH/MULTI optimistic transaction with
// bounded retries and constant-time secret comparison.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control. It does NOT generate
// codes, hash credentials, or rate-limit; those belong to the Engine and its
// collaborators.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling package other than internal.
//   - Log or expose plaintext secrets.
//   - Use non-constant-time comparisons for secret matching.
package stores
