package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllow_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Cooldown: 10 * time.Second, MaxPerHour: 30, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	if result := limiter.Allow(1, "203.0.113.10"); !result.Allowed {
		t.Fatalf("first action should be allowed, got blocked: %s", result.Reason)
	}

	clock.Advance(4 * time.Second)
	result := limiter.Allow(1, "203.0.113.10")
	if result.Allowed {
		t.Fatal("action within cooldown should be blocked")
	}
	if result.Reason != "cooldown" {
		t.Errorf("expected reason 'cooldown', got '%s'", result.Reason)
	}
	if result.RetryAfter != 6*time.Second {
		t.Errorf("expected RetryAfter 6s, got %v", result.RetryAfter)
	}

	// Another player is unaffected.
	if result := limiter.Allow(2, "203.0.113.10"); !result.Allowed {
		t.Errorf("other player should be allowed, got blocked: %s", result.Reason)
	}

	clock.Advance(7 * time.Second)
	if result := limiter.Allow(1, "203.0.113.10"); !result.Allowed {
		t.Errorf("action after cooldown should be allowed, got blocked: %s", result.Reason)
	}
}

func TestAllow_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Cooldown: time.Millisecond, MaxPerHour: 3, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		if result := limiter.Allow(1, "203.0.113.10"); !result.Allowed {
			t.Fatalf("action %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		clock.Advance(time.Minute)
	}

	result := limiter.Allow(1, "203.0.113.10")
	if result.Allowed || result.Reason != "hourly_limit" {
		t.Fatalf("expected hourly_limit, got %+v", result)
	}
	if result.RetryAfter != 57*time.Minute {
		t.Errorf("expected RetryAfter 57m, got %v", result.RetryAfter)
	}

	clock.Advance(58 * time.Minute)
	if result := limiter.Allow(1, "203.0.113.10"); !result.Allowed {
		t.Errorf("window should have reset, got blocked: %s", result.Reason)
	}
}

func TestAllow_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Cooldown: time.Millisecond, MaxPerHour: 100, MaxIPPerHour: 2, Clock: clock})
	defer limiter.Close()

	limiter.Allow(1, "198.51.100.7")
	limiter.Allow(2, "198.51.100.7")

	result := limiter.Allow(3, "198.51.100.7")
	if result.Allowed || result.Reason != "ip_hourly_limit" {
		t.Fatalf("expected ip_hourly_limit, got %+v", result)
	}
	if result := limiter.Allow(3, "198.51.100.8"); !result.Allowed {
		t.Errorf("different IP should be allowed, got blocked: %s", result.Reason)
	}
}

func TestAllow_RejectedAttemptsNotRecorded(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Cooldown: 10 * time.Second, MaxPerHour: 2, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	limiter.Allow(1, "203.0.113.10")
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		if result := limiter.Allow(1, "203.0.113.10"); result.Allowed {
			t.Fatalf("attempt %d inside cooldown should be blocked", i+1)
		}
	}

	clock.Advance(10 * time.Second)
	if result := limiter.Allow(1, "203.0.113.10"); !result.Allowed {
		t.Fatalf("blocked attempts should not count toward the hourly cap: %s", result.Reason)
	}
}

func TestReset(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Cooldown: time.Minute, MaxPerHour: 30, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	limiter.Allow(1, "203.0.113.10")
	limiter.Reset(1)
	if result := limiter.Allow(1, "203.0.113.10"); !result.Allowed {
		t.Errorf("reset player should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCleanupDropsStaleEntries(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Cooldown: time.Second, MaxPerHour: 30, MaxIPPerHour: 100, Clock: clock})
	defer limiter.Close()

	limiter.Allow(1, "203.0.113.10")
	clock.Advance(2 * time.Hour)
	limiter.cleanup()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.byUser) != 0 || len(limiter.byIP) != 0 {
		t.Errorf("expected empty maps after cleanup, got %d users and %d ips", len(limiter.byUser), len(limiter.byIP))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Cooldown != 5*time.Second {
		t.Errorf("expected Cooldown 5s, got %v", cfg.Cooldown)
	}
	if cfg.MaxPerHour != 30 {
		t.Errorf("expected MaxPerHour 30, got %d", cfg.MaxPerHour)
	}
	if cfg.MaxIPPerHour != 120 {
		t.Errorf("expected MaxIPPerHour 120, got %d", cfg.MaxIPPerHour)
	}
}

func TestLimiter_Close(t *testing.T) {
	limiter := New(nil)

	// Trigger cleanup goroutine
	limiter.Allow(1, "1.2.3.4")

	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Close() should not hang")
	}
}

func TestConcurrentAccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Cooldown: 0, MaxPerHour: 1000, MaxIPPerHour: 100000, Clock: clock})
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				limiter.Allow(userID%5, "192.168.1.1")
				if j%10 == 0 {
					limiter.Reset(userID % 5)
				}
			}
		}(int64(i))
	}
	wg.Wait()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "trusted proxy, rightmost public hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50",
		},
		{
			name:       "trusted proxy, all hops private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1",
		},
		{
			name:       "trusted proxy, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "untrusted proxy ignores spoofed XFF",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			remoteAddr: "192.168.1.100:54321",
			expected:   "192.168.1.100",
		},
		{
			name:       "IPv6 remote addr",
			remoteAddr: "[2001:db8::1]:443",
			expected:   "2001:db8::1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.168.1.100",
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.expected {
				t.Errorf("ClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.31.255.255", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true},
		{"::ffff:192.168.1.1", true},
		{"::ffff:8.8.8.8", false},
		{"203.0.113.50", false},
		{"2001:4860:4860::8888", false},
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := isPrivateIP(tt.ip); got != tt.expected {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}
