// Package rate provides the Redis-backed fixed-window failure counter that
// throttles repeated authentication failures per identity key.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on the first hit of the
// window. Counters are keyed per identity (provider + identifier), never
// globally, so a throttled identity cannot block unrelated ones. A rejected
// attempt is not counted again, and a successful verification does not reset
// the counter.
//
// # What this package must NOT do
//
//   - Decide which flows are throttled (the Engine owns that policy).
//   - Be imported outside the authcore module.
package rate
