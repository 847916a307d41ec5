package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"SensorBridge/internal/model"
)

func TestSinksDeliverToAllAndJoinErrors(t *testing.T) {
	var calls []string
	record := func(name string, err error) Sink {
		return SinkFunc(func(ctx context.Context, r model.Reading) error {
			calls = append(calls, name)
			return err
		})
	}
	s := Sinks{
		{Name: "forward", Sink: record("forward", errors.New("offline"))},
		{Name: "mqtt", Sink: record("mqtt", nil)},
		{Name: "monitor", Sink: record("monitor", errors.New("closed"))},
	}
	err := s.Deliver(context.Background(), model.Reading{})
	if strings.Join(calls, ",") != "forward,mqtt,monitor" {
		t.Fatalf("unexpected call order %v", calls)
	}
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if !strings.Contains(err.Error(), "forward: offline") || !strings.Contains(err.Error(), "monitor: closed") {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestSinksEmpty(t *testing.T) {
	if err := (Sinks{}).Deliver(context.Background(), model.Reading{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
