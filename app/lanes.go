package app

import "sync"

// Sample is what the periodic sampler sees on one firing.
type Sample struct {
	Ms     int64
	Thread int
	PB1    bool
}

// Lanes keeps the most recent samples, oldest first.
type Lanes struct {
	mu   sync.Mutex
	ring []Sample
	head int
	n    int
}

func newLanes(capacity int) *Lanes {
	if capacity <= 0 {
		capacity = 1
	}
	return &Lanes{ring: make([]Sample, capacity)}
}

func (l *Lanes) add(s Sample) {
	l.mu.Lock()
	l.ring[l.head] = s
	l.head = (l.head + 1) % len(l.ring)
	if l.n < len(l.ring) {
		l.n++
	}
	l.mu.Unlock()
}

// Snapshot copies the retained samples.
func (l *Lanes) Snapshot() []Sample {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Sample, l.n)
	start := (l.head - l.n + len(l.ring)) % len(l.ring)
	for i := range out {
		out[i] = l.ring[(start+i)%len(l.ring)]
	}
	return out
}

// Last returns up to n of the newest samples.
func (l *Lanes) Last(n int) []Sample {
	s := l.Snapshot()
	if n >= 0 && len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

func (l *Lanes) Reset() {
	l.mu.Lock()
	l.head, l.n = 0, 0
	l.mu.Unlock()
}
