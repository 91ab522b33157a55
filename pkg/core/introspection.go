package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Instance      string `json:"instance"`
	Started       bool   `json:"started"`
	Closed        bool   `json:"closed"`
	Authenticated bool   `json:"authenticated"`
	Domain        string `json:"domain,omitempty"`
	TransportType string `json:"transport_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transportType := "unknown"
	if s.transport != nil {
		transportType = "transport"
		if comp, ok := s.transport.(introspection.Component); ok {
			transportType = comp.ComponentType()
		}
	}

	state := ServiceState{
		Instance:      s.id,
		Started:       s.started,
		Closed:        s.closed,
		Authenticated: s.authenticated,
		TransportType: transportType,
	}
	if s.user != nil {
		state.Domain = s.user.Domain
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

// BusState exposes the registry size per event kind.
type BusState struct {
	Subscribers map[string][]string `json:"subscribers"`
}

// State implements introspection.Introspectable.
func (b *Bus) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make(map[string][]string, len(b.subs))
	for kind, list := range b.subs {
		for _, s := range list {
			subs[kind.String()] = append(subs[kind.String()], s.key)
		}
	}
	return BusState{Subscribers: subs}
}

// ComponentType implements introspection.Component.
func (b *Bus) ComponentType() string {
	return "bus"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
var _ introspection.Introspectable = (*Bus)(nil)
var _ introspection.Component = (*Bus)(nil)
