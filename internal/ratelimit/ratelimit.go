// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	PerMinute     int           // Sustained requests per minute per client
	Burst         int           // Requests allowed at once before throttling
	IdleTTL       time.Duration // Forget clients idle for this long
	CleanupPeriod time.Duration // How often to clean up idle clients
}

// DefaultAIConfig suits the model-backed endpoints.
func DefaultAIConfig(perMinute int) *Config {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &Config{
		PerMinute:     perMinute,
		Burst:         max(1, perMinute/6),
		IdleTTL:       10 * time.Minute,
		CleanupPeriod: 5 * time.Minute,
	}
}

// DefaultAuthConfig is stricter, to slow down password guessing.
func DefaultAuthConfig() *Config {
	return &Config{
		PerMinute:     10,
		Burst:         5,
		IdleTTL:       15 * time.Minute,
		CleanupPeriod: 5 * time.Minute,
	}
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Store keeps one token bucket per client and drops idle ones periodically.
type Store struct {
	config  *Config
	limit   rate.Limit
	mu      sync.Mutex
	clients map[string]*clientEntry
	stopCh  chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewStore starts the cleanup goroutine; call Close to stop it.
func NewStore(config *Config) *Store {
	if config.PerMinute <= 0 {
		config.PerMinute = 60
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	s := &Store{
		config:  config,
		limit:   rate.Every(time.Minute / time.Duration(config.PerMinute)),
		clients: make(map[string]*clientEntry),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
	go s.cleanupLoop()
	return s
}

// Allow takes a token for identifier if one is available.
func (s *Store) Allow(identifier string) Info {
	now := s.now()

	s.mu.Lock()
	e, ok := s.clients[identifier]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(s.limit, s.config.Burst)}
		s.clients[identifier] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	info := Info{Limit: s.config.Burst}
	r := e.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		info.RetryAfter = delay
		return info
	}
	info.Allowed = true
	info.Remaining = max(0, int(e.limiter.TokensAt(now)))
	return info
}

// Len reports how many clients are tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// cleanupLoop periodically removes idle clients
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) cleanup() {
	cutoff := s.now().Add(-s.config.IdleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.clients {
		if e.lastSeen.Before(cutoff) {
			delete(s.clients, id)
		}
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	// Check for forwarded IP (behind proxy/load balancer)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
