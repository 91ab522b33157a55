// Package lifecycle exposes bus events to aretw0/lifecycle supervisors.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/mdninja/pkg/core"
)

// DefaultBuffer is the number of events held while the consumer is busy.
// Events beyond it are dropped by the bus.
const DefaultBuffer = 64

type busSource struct {
	bus   *core.Bus
	key   string
	kinds []core.EventKind
	in    chan core.Event
	out   chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits bus events of the given
// kinds (all kinds when none are given). It subscribes under key on Start
// and unsubscribes when the context ends.
func NewSource(bus *core.Bus, key string, kinds ...core.EventKind) lifecycle.Source {
	if len(kinds) == 0 {
		for k := core.KindAuthChanged; k.Valid(); k++ {
			kinds = append(kinds, k)
		}
	}
	return &busSource{
		bus:   bus,
		key:   key,
		kinds: kinds,
		in:    make(chan core.Event, DefaultBuffer),
		out:   make(chan lifecycle.Event),
	}
}

func (s *busSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *busSource) Start(ctx context.Context) error {
	s.bus.Forward(s.key, s.in, s.kinds...)

	// The bridge goroutine is tracked by lifecycle.Go.
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		defer s.bus.Unsubscribe(s.key)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-s.in:
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
