package domain

import "time"

// CheckLifetime validates a [notBefore, notOnOrAfter) window against now,
// widened symmetrically by the allowed clock skew.
//
// Two alternate "nows" compensate for drift between SP and IdP clocks:
// futureNow = now + skew ("if our clock is slow, what time is it?") and
// pastNow = now - skew ("if our clock is fast, what time is it?"). The
// assertion is rejected when futureNow is still before notBefore, or when
// pastNow is on or after notOnOrAfter. A zero timestamp means the bound was
// absent and is not checked.
//
// Both the Conditions check and the SubjectConfirmationData check go through
// this one function so that they move in lockstep when skew changes.
func CheckLifetime(now time.Time, skew time.Duration, notBefore, notOnOrAfter time.Time) error {
	futureNow := now.Add(skew)
	if !notBefore.IsZero() && futureNow.Before(notBefore) {
		return Rejection(ErrCodeExpired,
			"rejecting SAML assertion because [%s] is before [%s]",
			futureNow.UTC().Format(time.RFC3339), notBefore.UTC().Format(time.RFC3339))
	}
	return CheckNotOnOrAfter(now, skew, notOnOrAfter)
}

// CheckNotOnOrAfter validates only the notOnOrAfter bound with the same
// skew-widened rule as CheckLifetime.
func CheckNotOnOrAfter(now time.Time, skew time.Duration, notOnOrAfter time.Time) error {
	if notOnOrAfter.IsZero() {
		return nil
	}
	pastNow := now.Add(-skew)
	if !pastNow.Before(notOnOrAfter) {
		return Rejection(ErrCodeExpired,
			"rejecting SAML assertion because [%s] is on/after [%s]",
			pastNow.UTC().Format(time.RFC3339), notOnOrAfter.UTC().Format(time.RFC3339))
	}
	return nil
}
