package mirror

import (
	"github.com/aretw0/introspection"
)

// MirrorState exposes internal state for observability.
type MirrorState struct {
	Root          string `json:"root"`
	Pattern       string `json:"pattern"`
	Tracked       int    `json:"tracked"`
	WatcherActive bool   `json:"watcher_active"`
	LastPull      int    `json:"last_pull"`
	LastPush      int    `json:"last_push"`
}

// State implements introspection.Introspectable.
func (m *Mirror) State() any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return MirrorState{
		Root:          m.root,
		Pattern:       m.pattern,
		Tracked:       len(m.known),
		WatcherActive: m.watcherActive,
		LastPull:      m.lastPull,
		LastPush:      m.lastPush,
	}
}

// ComponentType implements introspection.Component.
func (m *Mirror) ComponentType() string {
	return "mirror"
}

var _ introspection.Introspectable = (*Mirror)(nil)
var _ introspection.Component = (*Mirror)(nil)
