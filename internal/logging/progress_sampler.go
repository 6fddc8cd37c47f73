package logging

// ProgressSampler thins out per-entry progress logs. An event passes each time
// the completed share reaches the next step.
type ProgressSampler struct {
	step int
	next int
}

// NewProgressSampler returns a sampler that logs every stepPercent percent.
// Non-positive steps default to 5.
func NewProgressSampler(stepPercent int) *ProgressSampler {
	if stepPercent <= 0 {
		stepPercent = 5
	}
	return &ProgressSampler{step: stepPercent}
}

// ShouldLog reports whether the done/total event should be logged. Unknown
// totals always log.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	percent := min(done*100/total, 100)
	if percent < s.next {
		return false
	}
	s.next = (percent/s.step + 1) * s.step
	return true
}

// Reset starts sampling from zero again.
func (s *ProgressSampler) Reset() {
	if s != nil {
		s.next = 0
	}
}
