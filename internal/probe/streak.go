package probe

// FailureStreak counts consecutive failures against a threshold. It is
// the stopping predicate shared by dataset discovery (consecutive missing
// datasets) and the page walk (consecutive empty pages).
//
// Design decision: The predicate is a named type rather than an inline
// counter so the termination rule can be unit-tested without any network
// I/O, and so both loops provably apply the same semantics: any success
// fully resets the streak.
type FailureStreak struct {
	// threshold is the number of consecutive failures that exhausts the
	// streak. Non-positive thresholds exhaust immediately.
	threshold int

	// count is the current run of consecutive failures.
	count int
}

// NewFailureStreak creates a streak that exhausts after threshold
// consecutive failures.
func NewFailureStreak(threshold int) *FailureStreak {
	return &FailureStreak{threshold: threshold}
}

// Observe records the outcome of one probe. A success resets the streak
// to zero; a failure extends it.
func (f *FailureStreak) Observe(ok bool) {
	if ok {
		f.count = 0
		return
	}
	f.count++
}

// Exhausted reports whether the streak has reached its threshold.
func (f *FailureStreak) Exhausted() bool {
	return f.count >= f.threshold
}

// Count returns the current run of consecutive failures.
func (f *FailureStreak) Count() int {
	return f.count
}
