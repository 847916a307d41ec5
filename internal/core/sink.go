package core

import (
	"context"
	"errors"
	"fmt"

	"SensorBridge/internal/model"
)

// Sink receives parsed readings. Delivery is synchronous: the loop does not
// read the next line until Deliver returns.
type Sink interface {
	Deliver(ctx context.Context, r model.Reading) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r model.Reading) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, r model.Reading) error { return f(ctx, r) }

// NamedSink labels a sink for error messages.
type NamedSink struct {
	Name string
	Sink Sink
}

// Sinks delivers a reading to every sink in order. A failing sink does not
// stop the others; all failures are joined.
type Sinks []NamedSink

// Deliver implements Sink.
func (s Sinks) Deliver(ctx context.Context, r model.Reading) error {
	var errs []error
	for _, ns := range s {
		if err := ns.Sink.Deliver(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ns.Name, err))
		}
	}
	return errors.Join(errs...)
}
