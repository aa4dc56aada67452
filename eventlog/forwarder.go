package eventlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// A Sink stores records.
type Sink interface {
	Write(ctx context.Context, r Record) error
}

// Forwarder validates events and hands them to every sink.
type Forwarder struct {
	sinks []Sink
	clock clockwork.Clock
	log   *zap.Logger
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithClock sets the clock used for events without a creation time.
func WithClock(clock clockwork.Clock) Option {
	return func(f *Forwarder) { f.clock = clock }
}

// WithLogger sets the logger sink failures are reported to.
func WithLogger(log *zap.Logger) Option {
	return func(f *Forwarder) { f.log = log }
}

// NewForwarder returns a Forwarder writing to sinks.
func NewForwarder(sinks []Sink, opts ...Option) *Forwarder {
	f := &Forwarder{
		sinks: sinks,
		clock: clockwork.NewRealClock(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Log records e in every sink. Events without an id get a random one and
// events without a creation time are stamped with the current time. Every
// sink is tried; the returned error combines the failures.
func (f *Forwarder) Log(ctx context.Context, e Event) (Record, error) {
	if err := e.Validate(); err != nil {
		return Record{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Created.IsZero() {
		e.Created = f.clock.Now()
	}
	r := newRecord(e)

	var err error
	for _, s := range f.sinks {
		if serr := s.Write(ctx, r); serr != nil {
			f.log.Error("event sink failed", zap.String("id", r.ID), zap.Error(serr))
			err = multierr.Append(err, serr)
		}
	}
	if err != nil {
		return r, fmt.Errorf("eventlog: %w", err)
	}
	return r, nil
}

// ZapSink writes records as structured log entries.
type ZapSink struct {
	Logger *zap.Logger
}

func (s ZapSink) Write(_ context.Context, r Record) error {
	s.Logger.Info("activity event", zap.Object("event", r))
	return nil
}
