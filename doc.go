// Package authcore is an authentication core for backend applications: it
// manages accounts, credential verification, session lifecycle, single-use
// verification codes, and failure throttling, backed by Redis.
//
// Provider wiring (OAuth handshakes, email/SMS delivery, HTTP glue) stays
// outside: adapters call into the [Engine] through the sign-up, sign-in,
// reset, and verification operations and supply the [Hasher] and
// [VerificationSender] capabilities.
//
// # Correctness guarantees
//
//   - No two accounts collide on the same (provider, identifier): creation is
//     an atomic unique-check-and-insert at the storage layer.
//   - No session survives invalidation: sweeps and creations for the same
//     user are serialized, so a racing session is deterministically included
//     or excluded.
//   - No verification code is usable twice, past expiry, or after being
//     superseded by a newer issue for the same account and purpose.
//   - Authentication failures are uniform: wrong secret, unknown identity,
//     and dead codes share one error value and comparable timing.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types. Persistence, encoding, and rate limiting live under
// internal/ and are never exported. The password, session, and jwt
// subpackages are importable for standalone use.
package authcore
