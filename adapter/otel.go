package adapter

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/srediag/plugin-cas/pkg/counter"
)

// OTelObserver is a counter.Observer recording OpenTelemetry metrics.
type OTelObserver struct {
	commits   metric.Int64Counter
	conflicts metric.Int64Counter
	exhausted metric.Int64Counter
}

var _ counter.Observer = (*OTelObserver)(nil)

// NewOTelObserver creates the instruments on meter.
func NewOTelObserver(meter metric.Meter) (*OTelObserver, error) {
	commits, err := meter.Int64Counter("cas.counter.commits",
		metric.WithDescription("Values committed by a counter."),
		metric.WithUnit("{value}"))
	if err != nil {
		return nil, fmt.Errorf("create commits instrument: %w", err)
	}
	conflicts, err := meter.Int64Counter("cas.counter.conflicts",
		metric.WithDescription("Exchanges lost to a concurrent writer."),
		metric.WithUnit("{exchange}"))
	if err != nil {
		return nil, fmt.Errorf("create conflicts instrument: %w", err)
	}
	exhausted, err := meter.Int64Counter("cas.counter.exhausted",
		metric.WithDescription("Counters that reached their limit."),
		metric.WithUnit("{counter}"))
	if err != nil {
		return nil, fmt.Errorf("create exhausted instrument: %w", err)
	}
	return &OTelObserver{
		commits:   commits,
		conflicts: conflicts,
		exhausted: exhausted,
	}, nil
}

// ObserveCommit implements counter.Observer.
func (o *OTelObserver) ObserveCommit(name string, attempts int) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("counter", name))
	o.commits.Add(ctx, 1, attrs)
	if attempts > 1 {
		o.conflicts.Add(ctx, int64(attempts-1), attrs)
	}
}

// ObserveExhausted implements counter.Observer.
func (o *OTelObserver) ObserveExhausted(name string) {
	o.exhausted.Add(context.Background(), 1, metric.WithAttributes(attribute.String("counter", name)))
}

// MultiObserver fans every event out to all of its observers.
type MultiObserver []counter.Observer

// ObserveCommit implements counter.Observer.
func (m MultiObserver) ObserveCommit(name string, attempts int) {
	for _, o := range m {
		o.ObserveCommit(name, attempts)
	}
}

// ObserveExhausted implements counter.Observer.
func (m MultiObserver) ObserveExhausted(name string) {
	for _, o := range m {
		o.ObserveExhausted(name)
	}
}
