package gesture

import "time"

// DefaultCooldown is the minimum spacing between two emitted commands.
const DefaultCooldown = 800 * time.Millisecond

// Debounce holds the timestamp of the last emitted command.
// It is owned by a single arbiter and is not safe for concurrent use.
type Debounce struct {
	cooldownMs int64
	lastFireMs int64
	fired      bool
}

// NewDebounce creates a Debounce that permits its first emission immediately.
func NewDebounce(cooldown time.Duration) *Debounce {
	return &Debounce{cooldownMs: cooldown.Milliseconds()}
}

// Permit reports whether an emission at nowMs is outside the cooldown window.
func (d *Debounce) Permit(nowMs int64) bool {
	return !d.fired || nowMs-d.lastFireMs >= d.cooldownMs
}

// Record marks an emission at nowMs.
func (d *Debounce) Record(nowMs int64) {
	d.lastFireMs = nowMs
	d.fired = true
}

// Cooldown returns the configured window.
func (d *Debounce) Cooldown() time.Duration {
	return time.Duration(d.cooldownMs) * time.Millisecond
}
