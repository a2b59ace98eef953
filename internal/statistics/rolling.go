package statistics

// Rolling keeps the mean of the most recent rewards in a fixed window.
type Rolling struct {
	buf  []float64
	next int
	n    int
	sum  float64
}

// NewRolling returns a window holding up to size values. Sizes below one are
// treated as one.
func NewRolling(size int) *Rolling {
	return &Rolling{buf: make([]float64, max(1, size))}
}

// Push adds v, evicting the oldest value once the window is full.
func (r *Rolling) Push(v float64) {
	if r.n == len(r.buf) {
		r.sum -= r.buf[r.next]
	} else {
		r.n++
	}
	r.buf[r.next] = v
	r.sum += v
	r.next = (r.next + 1) % len(r.buf)
}

// Mean returns the window average, or zero when empty.
func (r *Rolling) Mean() float64 {
	if r.n == 0 {
		return 0
	}
	return r.sum / float64(r.n)
}

// Len returns the number of values currently held.
func (r *Rolling) Len() int {
	return r.n
}
