package web

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorTTL is how long an idle client keeps its limiter state.
const visitorTTL = 10 * time.Minute

// loginLimiter throttles login attempts per client address. Password
// verification is deliberately expensive, so unthrottled guessing is
// both a brute-force risk and a cheap CPU burn.
type loginLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int

	lastPrune time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newLoginLimiter creates a limiter allowing rps attempts per second
// with the given burst per client address.
func newLoginLimiter(rps float64, burst int) *loginLimiter {
	return &loginLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(rps),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

// allow reports whether the given client address may attempt a login now.
func (l *loginLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.pruneLocked(now)

	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = now

	return v.limiter.Allow()
}

// pruneLocked drops visitors idle longer than visitorTTL. Runs at most
// once a minute so allow stays cheap.
func (l *loginLimiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < time.Minute {
		return
	}
	l.lastPrune = now

	for addr, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, addr)
		}
	}
}
