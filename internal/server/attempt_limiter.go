package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// attemptLimiter blocks a key after maxAttempts recorded attempts inside one
// window. Login records failures only; public form submissions record every
// attempt.
type attemptLimiter struct {
	mu            sync.Mutex
	entries       map[string]attemptEntry
	maxAttempts   int
	window        time.Duration
	blockedFor    time.Duration
	staleAfter    time.Duration
	opCount       int
	cleanupEveryN int
}

type attemptEntry struct {
	attempts     int
	windowStart  time.Time
	blockedUntil time.Time
	lastSeenAt   time.Time
}

func newAttemptLimiter(maxAttempts int, window, blockedFor time.Duration) *attemptLimiter {
	if maxAttempts <= 0 || window <= 0 || blockedFor <= 0 {
		return nil
	}
	staleAfter := max(window, blockedFor) * 2
	if staleAfter < 10*time.Minute {
		staleAfter = 10 * time.Minute
	}
	return &attemptLimiter{
		entries:       make(map[string]attemptEntry),
		maxAttempts:   maxAttempts,
		window:        window,
		blockedFor:    blockedFor,
		staleAfter:    staleAfter,
		cleanupEveryN: 64,
	}
}

// Allow reports whether key is currently unblocked.
func (l *attemptLimiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.refreshLocked(key, now)
	l.entries[key] = entry
	l.maybeCleanupLocked(now)
	return entry.blockedUntil.IsZero()
}

// Record counts one attempt against key and blocks it once the budget is spent.
func (l *attemptLimiter) Record(key string, now time.Time) {
	if l == nil || key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.refreshLocked(key, now)
	if entry.windowStart.IsZero() {
		entry.windowStart = now
	}
	entry.attempts++
	if entry.attempts >= l.maxAttempts {
		entry.blockedUntil = now.Add(l.blockedFor)
		entry.attempts = 0
		entry.windowStart = time.Time{}
	}
	l.entries[key] = entry
	l.maybeCleanupLocked(now)
}

// Hit is Allow followed by Record, for endpoints that count every request.
func (l *attemptLimiter) Hit(key string, now time.Time) bool {
	if !l.Allow(key, now) {
		return false
	}
	l.Record(key, now)
	return true
}

func (l *attemptLimiter) Reset(key string) {
	if l == nil || key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

func (l *attemptLimiter) refreshLocked(key string, now time.Time) attemptEntry {
	entry := l.entries[key]
	if !entry.blockedUntil.IsZero() && !now.Before(entry.blockedUntil) {
		entry.blockedUntil = time.Time{}
	}
	if !entry.windowStart.IsZero() && now.Sub(entry.windowStart) > l.window {
		entry.attempts = 0
		entry.windowStart = time.Time{}
	}
	entry.lastSeenAt = now
	return entry
}

func (l *attemptLimiter) maybeCleanupLocked(now time.Time) {
	l.opCount++
	if l.cleanupEveryN <= 0 {
		l.cleanupEveryN = 64
	}
	if l.opCount%l.cleanupEveryN != 0 {
		return
	}
	for key, entry := range l.entries {
		if entry.lastSeenAt.IsZero() || now.Sub(entry.lastSeenAt) > l.staleAfter {
			delete(l.entries, key)
		}
	}
}

func loginAttemptKey(username string, r *http.Request) string {
	user := strings.ToLower(strings.TrimSpace(username))
	if user == "" {
		user = "<empty>"
	}
	return clientKey(r) + "|" + user
}

func clientKey(r *http.Request) string {
	ip := requestClientIP(r)
	if ip == "" {
		return "<unknown>"
	}
	return ip
}

func requestClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remote)
	if err == nil {
		return strings.TrimSpace(host)
	}
	return remote
}
