package events

import (
	"context"
	"errors"
	"fmt"

	"moviemate/internal/domain"
	"moviemate/internal/metrics"
)

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.PartyEvent) error { return nil }

// Sink is a named destination for party events.
type Sink struct {
	Name      string
	Publisher domain.EventPublisher
}

type multiPublisher struct {
	sinks []Sink
}

// NewMultiPublisher fans each event out to every sink. A failing sink does
// not stop delivery to the others.
func NewMultiPublisher(sinks ...Sink) domain.EventPublisher {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s.Publisher != nil {
			kept = append(kept, s)
		}
	}
	return &multiPublisher{sinks: kept}
}

func (m *multiPublisher) Publish(ctx context.Context, event domain.PartyEvent) error {
	var errs []error
	for _, s := range m.sinks {
		err := s.Publisher.Publish(ctx, event)
		metrics.RecordPublish(s.Name, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
