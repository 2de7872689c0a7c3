package govern

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/regintel/riskscan/internal/model"
)

// window is one caller's sliding-window record.
type window struct {
	Count       int
	WindowStart time.Time
}

// RateLimiter enforces a fixed-ceiling sliding window per caller identity.
// It is an explicitly-scoped store created at process start: tests inject a
// fresh limiter (and a fake clock) per case rather than sharing hidden
// globals. All access is mutex-guarded; the read-modify-write on a window
// record must not interleave under concurrent requests.
type RateLimiter struct {
	mu      sync.Mutex
	store   *gocache.Cache
	max     int
	window  time.Duration
	nowFunc func() time.Time
}

// NewRateLimiter creates a limiter allowing max requests per window.
func NewRateLimiter(max int, windowSize time.Duration) *RateLimiter {
	if max <= 0 {
		max = 25
	}
	if windowSize <= 0 {
		windowSize = 10 * time.Minute
	}
	return &RateLimiter{
		// Records expire one full window after last touch, so idle
		// identities cost nothing.
		store:   gocache.New(windowSize, 2*windowSize),
		max:     max,
		window:  windowSize,
		nowFunc: time.Now,
	}
}

// WithNow injects a clock for tests.
func (l *RateLimiter) WithNow(now func() time.Time) *RateLimiter {
	l.nowFunc = now
	return l
}

// Allow records one request for the identity and reports whether it is
// within the ceiling. The check happens before any file is read, so a
// rejected caller pays no parsing cost.
func (l *RateLimiter) Allow(identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()

	var rec *window
	if v, found := l.store.Get(identity); found {
		rec = v.(*window)
	}

	if rec == nil || now.Sub(rec.WindowStart) >= l.window {
		rec = &window{Count: 0, WindowStart: now}
	}

	if rec.Count >= l.max {
		l.store.Set(identity, rec, l.window)
		return model.Wrap(model.ErrRateLimited, "%d requests in the current window (limit %d)", rec.Count, l.max)
	}

	rec.Count++
	l.store.Set(identity, rec, l.window)
	return nil
}
