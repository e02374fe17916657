// Package ratelimit throttles match result actions per player and per client IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	Cooldown     time.Duration // Minimum time between actions by one player
	MaxPerHour   int           // Max actions per player per hour
	MaxIPPerHour int           // Max actions per client IP per hour

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		Cooldown:     5 * time.Second,
		MaxPerHour:   30,
		MaxIPPerHour: 120,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count   int
	firstAt time.Time // First action in window
	lastAt  time.Time // Most recent action (for cooldown)
}

// Limiter enforces a per-player cooldown plus hourly caps per player and per IP.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.Mutex
	byUser map[int64]*entry
	byIP   map[string]*entry // keyed by hash of IP

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byUser:        make(map[int64]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Allow checks whether userID may perform a match action from ip and, when
// allowed, records the action. Rejected attempts are not recorded.
func (l *Limiter) Allow(userID int64, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	ipKey := hashKey("ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	if e := l.byUser[userID]; e != nil {
		if elapsed := now.Sub(e.lastAt); elapsed < l.config.Cooldown {
			return LimitResult{RetryAfter: l.config.Cooldown - elapsed, Reason: "cooldown"}
		}
		if l.config.MaxPerHour > 0 && now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxPerHour {
			return LimitResult{RetryAfter: time.Hour - now.Sub(e.firstAt), Reason: "hourly_limit"}
		}
	}
	if e := l.byIP[ipKey]; e != nil {
		if l.config.MaxIPPerHour > 0 && now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxIPPerHour {
			return LimitResult{RetryAfter: time.Hour - now.Sub(e.firstAt), Reason: "ip_hourly_limit"}
		}
	}

	l.byUser[userID] = bump(l.byUser[userID], now)
	l.byIP[ipKey] = bump(l.byIP[ipKey], now)
	return LimitResult{Allowed: true}
}

// Reset forgets all recorded actions for userID.
func (l *Limiter) Reset(userID int64) {
	l.mu.Lock()
	delete(l.byUser, userID)
	l.mu.Unlock()
}

func bump(e *entry, now time.Time) *entry {
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		return &entry{count: 1, firstAt: now, lastAt: now}
	}
	e.count++
	e.lastAt = now
	return e
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byUser {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byUser, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
}

// LogRateLimitExceeded logs a rejected match action.
func LogRateLimitExceeded(ctx context.Context, action string, userID int64, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("action", action).
		Int64("user_id", userID).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Match action rate limit exceeded")
}
