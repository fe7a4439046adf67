package internaldefs

import (
	authcore "github.com/authcore-io/authcore"
)

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported engine counter. Order is stable.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricSignUpSuccess, Name: "authcore_signup_success_total", Help: "Committed account creations."},
	{ID: authcore.MetricSignUpDuplicate, Name: "authcore_signup_duplicate_total", Help: "Creations rejected by the uniqueness guard."},
	{ID: authcore.MetricSignInSuccess, Name: "authcore_signin_success_total", Help: "Successful credential verifications."},
	{ID: authcore.MetricSignInFailure, Name: "authcore_signin_failure_total", Help: "Failed credential verifications."},
	{ID: authcore.MetricSignInThrottled, Name: "authcore_signin_throttled_total", Help: "Attempts rejected by the failure limiter."},
	{ID: authcore.MetricSessionCreated, Name: "authcore_session_created_total", Help: "Minted sessions."},
	{ID: authcore.MetricSessionInvalidated, Name: "authcore_session_invalidated_total", Help: "Sessions removed by invalidation sweeps."},
	{ID: authcore.MetricSignOut, Name: "authcore_signout_total", Help: "Single-session sign-outs."},
	{ID: authcore.MetricResetRequested, Name: "authcore_reset_requested_total", Help: "Issued password reset codes."},
	{ID: authcore.MetricResetCompleted, Name: "authcore_reset_completed_total", Help: "Completed password resets."},
	{ID: authcore.MetricResetFailure, Name: "authcore_reset_failure_total", Help: "Rejected reset completions."},
	{ID: authcore.MetricVerificationIssued, Name: "authcore_verification_issued_total", Help: "Issued email verification codes."},
	{ID: authcore.MetricVerificationConfirmed, Name: "authcore_verification_confirmed_total", Help: "Confirmed email verifications."},
	{ID: authcore.MetricVerificationFailure, Name: "authcore_verification_failure_total", Help: "Rejected email verifications."},
}
