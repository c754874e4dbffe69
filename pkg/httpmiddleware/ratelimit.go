package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures a per-client token bucket.
type RateLimitConfig struct {
	// Rate is the sustained number of requests per Per.
	Rate int
	Per  time.Duration
	// Burst defaults to Rate.
	Burst int
	// KeyFunc identifies the client. Defaults to ClientIP, or to
	// ForwardedClientIP when TrustedProxies is set.
	KeyFunc func(*http.Request) string
	// TrustedProxies lists the peers whose forwarding headers are honoured.
	TrustedProxies []netip.Prefix
	// IdleTTL evicts buckets unused for this long. Defaults to 10*Per.
	IdleTTL time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	cfg     RateLimitConfig
	limit   rate.Limit
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewLimiter creates a Limiter. Rate and Per must be positive.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Rate
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
		if len(cfg.TrustedProxies) > 0 {
			cfg.KeyFunc = ForwardedClientIP(cfg.TrustedProxies)
		}
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * cfg.Per
	}
	return &Limiter{
		cfg:     cfg,
		limit:   rate.Limit(float64(cfg.Rate) / cfg.Per.Seconds()),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// reserve takes a token for key. On refusal it returns how long to wait.
func (l *Limiter) reserve(key string) (ok bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	b, found := l.buckets[key]
	if !found {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, l.cfg.Per
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (l *Limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
}

// Run evicts idle buckets until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.IdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict(l.now())
		}
	}
}

// Middleware responds 429 with Retry-After once a client's bucket is empty.
func (l *Limiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := l.reserve(l.cfg.KeyFunc(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host of the connection's remote address. Forwarding
// headers are ignored since any client can set them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedClientIP returns a key func that reads X-Forwarded-For and
// X-Real-IP only when the connection comes from one of trusted. The
// X-Forwarded-For chain is walked from the right and the first hop outside
// trusted is the client.
func ForwardedClientIP(trusted []netip.Prefix) func(*http.Request) string {
	isTrusted := func(s string) bool {
		addr, err := netip.ParseAddr(strings.TrimSpace(s))
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}
	return func(r *http.Request) string {
		peer := ClientIP(r)
		if !isTrusted(peer) {
			return peer
		}
		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			hops := strings.Split(strings.Join(xff, ","), ",")
			for i := len(hops) - 1; i >= 0; i-- {
				hop := strings.TrimSpace(hops[i])
				if hop == "" {
					continue
				}
				if !isTrusted(hop) {
					return hop
				}
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
		return peer
	}
}

// ParsePrefixes parses CIDR prefixes or bare addresses.
func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !strings.Contains(v, "/") {
			addr, err := netip.ParseAddr(v)
			if err != nil {
				return nil, err
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Masked())
	}
	return out, nil
}
