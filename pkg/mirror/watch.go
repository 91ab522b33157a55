package mirror

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/mdninja/pkg/core"
)

// Watch starts watching the mirror for page edits. The returned channel is
// closed once ctx is done and the watcher has shut down.
func (m *Mirror) Watch(ctx context.Context) (<-chan Change, error) {
	changes := make(chan Change)
	w := newWatchWorker(m, changes)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	lifecycle.Go(ctx, func(context.Context) error {
		<-w.done
		close(changes)
		return nil
	})
	return changes, nil
}

// Editor is the part of editor.Editor that Follow drives.
type Editor interface {
	Open(ctx context.Context, name string) error
	Create(ctx context.Context, name string) (core.Page, error)
	SetMarkdown(markdown string) error
	Dirty() bool
}

// Follow applies every watched change through the editor until ctx is done:
// the page is opened (created when the site lacks it), its markdown replaced,
// and a SaveShortcut emitted on bus so the attached editor saves it.
//
// A change that fails to apply is reported and skipped.
func (m *Mirror) Follow(ctx context.Context, ed Editor, bus *core.Bus) error {
	changes, err := m.Watch(ctx)
	if err != nil {
		return err
	}
	for c := range changes {
		if err := m.Apply(ctx, ed, bus, c); err != nil {
			m.reportError(err)
			continue
		}
		m.logger.Info("page synced", "name", c.Name)
	}
	return nil
}

// Apply pushes one change through the editor.
func (m *Mirror) Apply(ctx context.Context, ed Editor, bus *core.Bus, c Change) error {
	err := ed.Open(ctx, c.Name)
	if core.StatusCode(err) == http.StatusNotFound {
		if _, err = ed.Create(ctx, c.Name); err == nil {
			err = ed.Open(ctx, c.Name)
		}
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", c.Name, err)
	}
	if err := ed.SetMarkdown(c.Markdown); err != nil {
		return fmt.Errorf("update %s: %w", c.Name, err)
	}

	bus.Emit(core.SaveShortcut{})
	if ed.Dirty() {
		// No editor is attached to the bus, or the save failed (the editor
		// logs why).
		return fmt.Errorf("save %s: page still has unsaved changes", c.Name)
	}
	m.remember(c.Name, c.Markdown)
	return nil
}
