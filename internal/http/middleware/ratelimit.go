package middleware

import (
	"sync"
	"time"
)

type clientInfo struct {
	last  time.Time
	count int
}

// memoryLimiter is the per-process fixed window used when redis is not
// configured.
type memoryLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientInfo
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func newMemoryLimiter(maxRequests int, window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		clients:     make(map[string]*clientInfo),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// hit counts one request for key and returns the count inside the current window.
func (l *memoryLimiter) hit(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.last) > l.window {
		if len(l.clients) > 10000 {
			l.evict(now)
		}
		l.clients[key] = &clientInfo{last: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}

func (l *memoryLimiter) evict(now time.Time) {
	for k, ci := range l.clients {
		if now.Sub(ci.last) > l.window {
			delete(l.clients, k)
		}
	}
}
