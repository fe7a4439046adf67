package authcore

import "sync/atomic"

// MetricID names one engine counter.
type MetricID uint16

const (
	// MetricSignUpSuccess counts committed account creations.
	MetricSignUpSuccess MetricID = iota
	// MetricSignUpDuplicate counts creations rejected by the uniqueness guard.
	MetricSignUpDuplicate
	// MetricSignInSuccess counts successful credential verifications.
	MetricSignInSuccess
	// MetricSignInFailure counts failed credential verifications.
	MetricSignInFailure
	// MetricSignInThrottled counts attempts rejected by the failure limiter.
	MetricSignInThrottled
	// MetricSessionCreated counts minted sessions.
	MetricSessionCreated
	// MetricSessionInvalidated counts sessions removed by invalidation sweeps.
	MetricSessionInvalidated
	// MetricSignOut counts single-session sign-outs.
	MetricSignOut
	// MetricResetRequested counts issued reset codes.
	MetricResetRequested
	// MetricResetCompleted counts redeemed reset codes with secret change.
	MetricResetCompleted
	// MetricResetFailure counts rejected reset completions.
	MetricResetFailure
	// MetricVerificationIssued counts issued email verification codes.
	MetricVerificationIssued
	// MetricVerificationConfirmed counts redeemed email verification codes.
	MetricVerificationConfirmed
	// MetricVerificationFailure counts rejected email verifications.
	MetricVerificationFailure

	metricCount
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Metrics is a lock-free counter registry.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc adds one to the counter. Unknown IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot copies every counter.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
