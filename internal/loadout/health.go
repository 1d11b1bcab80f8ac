package loadout

// Health holds an actor's hit points.
type Health struct {
	current int
	max     int
}

// NewHealth returns full health with the given maximum.
func NewHealth(max int) *Health {
	if max < 1 {
		max = 1
	}
	return &Health{current: max, max: max}
}

func (h *Health) Current() int { return h.current }
func (h *Health) Max() int     { return h.max }

// Add changes hit points by n, clamped to 0..max, and returns the amount
// actually applied.
func (h *Health) Add(n int) int {
	next := h.current + n
	if next > h.max {
		next = h.max
	}
	if next < 0 {
		next = 0
	}
	applied := next - h.current
	h.current = next
	return applied
}
