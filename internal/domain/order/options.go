package order

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/cafefusion/backend/internal/domain/order"

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	notifier       Notifier
	notifyTimeout  time.Duration
	now            func() time.Time
}

func defaultOptions() options {
	return options{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
		notifyTimeout:  DefaultNotifyTimeout,
		now:            time.Now,
	}
}

// Option configures a Service.
type Option func(*options)

// WithTracerProvider sets the provider used for engine spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the provider used for engine counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithNotifier registers a receiver for committed status changes.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// DefaultNotifyTimeout bounds delivery of a single status change.
const DefaultNotifyTimeout = 3 * time.Second

// WithNotifyTimeout bounds how long a status change waits for the notifier.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
