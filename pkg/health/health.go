// Package health serves /livez and /readyz probes backed by periodic
// background checks.
//
// A check flips to failing only after FailureThreshold consecutive errors and
// back to passing after SuccessThreshold consecutive successes, so a single
// slow database ping does not take the pod out of rotation.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// CheckFunc returns nil when the component is healthy.
type CheckFunc func(ctx context.Context) error

// Kind selects the probe a check contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

func (k Kind) String() string {
	if k == Liveness {
		return "liveness"
	}
	return "readiness"
}

// CheckOption tunes a registered check.
type CheckOption func(*check)

// WithTimeout bounds a single run of the check. Default is one second.
func WithTimeout(d time.Duration) CheckOption {
	return func(c *check) { c.timeout = d }
}

// WithThresholds sets the consecutive failure and success counts needed to
// change state. Defaults are 3 and 1.
func WithThresholds(failures, successes int) CheckOption {
	return func(c *check) {
		c.failureThreshold = max(failures, 1)
		c.successThreshold = max(successes, 1)
	}
}

type check struct {
	kind             Kind
	name             string
	fn               CheckFunc
	timeout          time.Duration
	failureThreshold int
	successThreshold int

	// Guarded by Health.mu.
	passing bool
	lastErr error
	fails   int
	oks     int
}

// Health tracks registered checks and the manual readiness switch.
type Health struct {
	lg *zap.Logger

	mu     sync.RWMutex
	checks []*check
	ready  bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Health that starts not ready.
func New(lg *zap.Logger) *Health {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Health{lg: lg}
}

// Register adds a check. Checks start passing. Register before Start.
func (h *Health) Register(kind Kind, name string, fn CheckFunc, opts ...CheckOption) {
	c := &check{
		kind:             kind,
		name:             name,
		fn:               fn,
		timeout:          time.Second,
		failureThreshold: 3,
		successThreshold: 1,
		passing:          true,
	}
	for _, opt := range opts {
		opt(c)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, c)
}

// Start runs every check immediately and then once per interval until Stop
// or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := append([]*check(nil), h.checks...)
	h.mu.Unlock()

	for _, c := range checks {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.loop(ctx, c, interval)
		}()
	}
}

func (h *Health) loop(ctx context.Context, c *check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		h.runOnce(ctx, c)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Health) runOnce(ctx context.Context, c *check) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.fn(runCtx)
	cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	c.lastErr = err
	was := c.passing
	if err != nil {
		c.oks = 0
		c.fails++
		if c.fails >= c.failureThreshold {
			c.passing = false
		}
	} else {
		c.fails = 0
		c.oks++
		if c.oks >= c.successThreshold {
			c.passing = true
		}
	}

	if was != c.passing {
		fields := []zap.Field{zap.String("check", c.name), zap.Stringer("kind", c.kind)}
		if c.passing {
			h.lg.Info("Health check recovered", fields...)
		} else {
			h.lg.Warn("Health check failing", append(fields, zap.Error(err))...)
		}
	}
}

// Stop cancels the background checks and waits for them to exit.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		h.wg.Wait()
	}
}

// SetReady flips the manual readiness switch.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady reports whether the switch is on and all readiness checks pass.
func (h *Health) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready && len(h.failures(Readiness)) == 0
}

// failures must be called with h.mu held.
func (h *Health) failures(kind Kind) map[string]string {
	out := map[string]string{}
	for _, c := range h.checks {
		if c.kind != kind || c.passing {
			continue
		}
		msg := "check is failing"
		if c.lastErr != nil {
			msg = c.lastErr.Error()
		}
		out[c.name] = msg
	}
	return out
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	failures := h.failures(Liveness)
	h.mu.RUnlock()

	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	failures := h.failures(Readiness)
	if !h.ready {
		failures["_readiness"] = "service is not ready"
	}
	h.mu.RUnlock()

	writeStatus(w, failures)
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	status, code := "ok", http.StatusOK
	if len(failures) > 0 {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str(status)
	if len(failures) > 0 {
		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		sort.Strings(names)

		e.FieldStart("checks")
		e.ObjStart()
		for _, name := range names {
			e.FieldStart(name)
			e.Str(failures[name])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
