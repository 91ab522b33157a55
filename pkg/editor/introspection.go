package editor

import (
	"github.com/aretw0/introspection"
)

// EditorState exposes internal state for observability.
type EditorState struct {
	Key      string `json:"key"`
	Page     string `json:"page,omitempty"`
	Dirty    bool   `json:"dirty"`
	Busy     bool   `json:"busy"`
	Pages    int    `json:"pages"`
	Files    int    `json:"files"`
	Attached bool   `json:"attached"`
}

// State implements introspection.Introspectable.
func (e *Editor) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := EditorState{
		Key:      e.key,
		Dirty:    e.dirty,
		Busy:     e.busy,
		Pages:    len(e.pages),
		Files:    len(e.files),
		Attached: e.attached,
	}
	if e.page != nil {
		s.Page = e.page.Name
	}
	return s
}

// ComponentType implements introspection.Component.
func (e *Editor) ComponentType() string {
	return "editor"
}

var _ introspection.Introspectable = (*Editor)(nil)
var _ introspection.Component = (*Editor)(nil)
