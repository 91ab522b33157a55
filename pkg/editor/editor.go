// Package editor keeps one locally edited page in sync with the backend copy.
//
// The Editor tracks unsaved changes, saves before navigating away and
// serialises every mutation (page or file): a second mutation started while
// one is outstanding fails with ErrBusy instead of queueing.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/validate"
)

// DefaultKey is the subscriber key used when Config.Key is empty.
const DefaultKey = "editor"

var (
	// ErrBusy is returned when a mutation is already outstanding.
	ErrBusy = errors.New("another change is in progress")
	// ErrNoPage is returned by operations that need an open page.
	ErrNoPage = errors.New("no page is open")
)

// API is the part of core.Service the editor drives.
type API interface {
	Bus() *core.Bus
	Pages(ctx context.Context) ([]core.Page, error)
	GetPage(ctx context.Context, name string) (core.Page, error)
	CreatePage(ctx context.Context, p core.Page) (core.Page, error)
	EditPage(ctx context.Context, p core.Page) error
	RenamePage(ctx context.Context, oldName, newName string) error
	DeletePage(ctx context.Context, name string) error
	Files(ctx context.Context) ([]core.File, error)
	UploadFile(ctx context.Context, name string, body io.Reader, onProgress core.ProgressFunc) error
	RenameFile(ctx context.Context, oldName, newName string) error
	DeleteFile(ctx context.Context, name string) error
}

// Config wires an Editor.
type Config struct {
	API      API
	Renderer core.Renderer
	Key      string
	Logger   *slog.Logger
}

// Editor is the page/file editing workflow.
type Editor struct {
	api      API
	renderer core.Renderer
	key      string
	logger   *slog.Logger

	mu       sync.Mutex
	page     *core.Page // nil when nothing is open
	saved    string     // markdown of the last load or save
	dirty    bool
	busy     bool
	pages    []core.Page
	files    []core.File
	attached bool
	ctx      context.Context // used by bus-triggered saves
}

// New creates an Editor. Call Attach to react to bus events.
func New(cfg Config) *Editor {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Editor{
		api:      cfg.API,
		renderer: cfg.Renderer,
		key:      key,
		logger:   logger.With("component", "editor"),
		ctx:      context.Background(),
	}
}

// Attach subscribes the editor under its key: SaveShortcut saves the open
// page, AuthChanged to signed-out drops all local state. Bus-triggered saves
// run with ctx.
func (e *Editor) Attach(ctx context.Context) {
	e.mu.Lock()
	if e.attached {
		e.mu.Unlock()
		return
	}
	e.attached = true
	e.ctx = ctx
	e.mu.Unlock()

	bus := e.api.Bus()
	core.Listen(bus, e.key, func(core.SaveShortcut) {
		e.mu.Lock()
		ctx := e.ctx
		e.mu.Unlock()
		if err := e.Save(ctx); err != nil {
			e.logger.Error("save failed", "error", err)
		}
	})
	core.Listen(bus, e.key, func(ev core.AuthChanged) {
		if !ev.Authenticated {
			e.reset()
		}
	})
}

// Close removes the editor's subscriptions.
func (e *Editor) Close() {
	e.mu.Lock()
	attached := e.attached
	e.attached = false
	e.mu.Unlock()
	if attached {
		e.api.Bus().Unsubscribe(e.key)
	}
}

// Key returns the subscriber key.
func (e *Editor) Key() string {
	return e.key
}

// Refresh reloads the page and file listings.
func (e *Editor) Refresh(ctx context.Context) error {
	pages, err := e.api.Pages(ctx)
	if err != nil {
		return err
	}
	files, err := e.api.Files(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.pages = pages
	e.files = files
	e.mu.Unlock()
	return nil
}

// Pages returns the last fetched page listing.
func (e *Editor) Pages() []core.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Page(nil), e.pages...)
}

// Files returns the last fetched file listing.
func (e *Editor) Files() []core.File {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.File(nil), e.files...)
}

// Current returns a copy of the open page.
func (e *Editor) Current() (core.Page, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.page == nil {
		return core.Page{}, false
	}
	return *e.page, true
}

// Dirty reports whether the open page has unsaved changes.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Busy reports whether a mutation is outstanding.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Open loads name as the current page. Unsaved changes of the current page
// are saved first; when that save fails the editor stays where it is.
func (e *Editor) Open(ctx context.Context, name string) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if err := e.save(ctx); err != nil {
		return fmt.Errorf("save before opening %s: %w", name, err)
	}

	p, err := e.api.GetPage(ctx, name)
	if err != nil {
		return err
	}
	if p.Name == "" {
		p.Name = name
	}

	e.mu.Lock()
	e.page = &p
	e.saved = p.Markdown
	e.mu.Unlock()
	e.setDirty(p.Name, false)
	return nil
}

// SetMarkdown replaces the markdown of the open page and re-renders it.
func (e *Editor) SetMarkdown(markdown string) error {
	html, err := e.render(markdown)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.page == nil {
		e.mu.Unlock()
		return ErrNoPage
	}
	e.page.Markdown = markdown
	e.page.HTML = html
	name := e.page.Name
	dirty := markdown != e.saved
	e.mu.Unlock()

	e.setDirty(name, dirty)
	return nil
}

// Save pushes the open page when it has unsaved changes.
func (e *Editor) Save(ctx context.Context) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()
	return e.save(ctx)
}

func (e *Editor) save(ctx context.Context) error {
	e.mu.Lock()
	if e.page == nil || !e.dirty {
		e.mu.Unlock()
		return nil
	}
	p := *e.page
	e.mu.Unlock()

	if err := e.api.EditPage(ctx, p); err != nil {
		return err
	}

	e.mu.Lock()
	stillOpen := e.page != nil && e.page.Name == p.Name
	if stillOpen {
		e.saved = p.Markdown
	}
	dirty := stillOpen && e.page.Markdown != p.Markdown
	e.mu.Unlock()

	e.logger.Debug("page saved", "name", p.Name)
	if stillOpen {
		e.setDirty(p.Name, dirty)
	}
	e.api.Bus().Emit(core.PageSaved{Name: p.Name})
	return nil
}

// Create creates a page (the backend default when name is empty) and
// refreshes the listing.
func (e *Editor) Create(ctx context.Context, name string) (core.Page, error) {
	if name != "" {
		if err := validate.Filename(name); err != nil {
			return core.Page{}, err
		}
	}
	var created core.Page
	err := e.mutate(ctx, func() error {
		var err error
		created, err = e.api.CreatePage(ctx, core.Page{Name: name})
		return err
	})
	return created, err
}

// Rename renames a page. Renaming the open page keeps it open under the new
// name.
func (e *Editor) Rename(ctx context.Context, oldName, newName string) error {
	if err := validate.Filename(newName); err != nil {
		return err
	}
	return e.mutate(ctx, func() error {
		if err := e.api.RenamePage(ctx, oldName, newName); err != nil {
			return err
		}
		e.mu.Lock()
		if e.page != nil && e.page.Name == oldName {
			e.page.Name = newName
		}
		e.mu.Unlock()
		return nil
	})
}

// Delete removes a page. Deleting the open page closes it and drops its
// unsaved changes.
func (e *Editor) Delete(ctx context.Context, name string) error {
	var closed bool
	err := e.mutate(ctx, func() error {
		if err := e.api.DeletePage(ctx, name); err != nil {
			return err
		}
		e.mu.Lock()
		if e.page != nil && e.page.Name == name {
			closed = e.dirty
			e.page = nil
			e.saved = ""
			e.dirty = false
		}
		e.mu.Unlock()
		return nil
	})
	if closed {
		e.api.Bus().Emit(core.DirtyChanged{Name: name, Dirty: false})
	}
	return err
}

// Upload sends a file and refreshes the listing. Progress is also published
// on the bus as UploadProgress.
func (e *Editor) Upload(ctx context.Context, name string, body io.Reader, onProgress core.ProgressFunc) error {
	safe := validate.SafeName(name)
	if err := validate.Filename(safe); err != nil {
		return err
	}
	return e.mutate(ctx, func() error {
		return e.api.UploadFile(ctx, safe, body, onProgress)
	})
}

// RenameFile renames an uploaded file.
func (e *Editor) RenameFile(ctx context.Context, oldName, newName string) error {
	if err := validate.Filename(newName); err != nil {
		return err
	}
	return e.mutate(ctx, func() error {
		return e.api.RenameFile(ctx, oldName, newName)
	})
}

// DeleteFile removes an uploaded file.
func (e *Editor) DeleteFile(ctx context.Context, name string) error {
	return e.mutate(ctx, func() error {
		return e.api.DeleteFile(ctx, name)
	})
}

// mutate runs fn as the single outstanding mutation, then refreshes the
// listing. A failed refresh is logged; the mutation itself succeeded.
func (e *Editor) mutate(ctx context.Context, fn func() error) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if err := fn(); err != nil {
		return err
	}
	if err := e.Refresh(ctx); err != nil {
		e.logger.Warn("refresh after change failed", "error", err)
	}
	return nil
}

func (e *Editor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return ErrBusy
	}
	e.busy = true
	return nil
}

func (e *Editor) end() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

// setDirty records the flag and emits DirtyChanged on a transition.
func (e *Editor) setDirty(name string, dirty bool) {
	e.mu.Lock()
	changed := e.dirty != dirty
	e.dirty = dirty
	e.mu.Unlock()
	if changed {
		e.api.Bus().Emit(core.DirtyChanged{Name: name, Dirty: dirty})
	}
}

func (e *Editor) render(markdown string) (string, error) {
	if e.renderer == nil {
		return "", nil
	}
	html, err := e.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return html, nil
}

func (e *Editor) reset() {
	e.mu.Lock()
	e.page = nil
	e.saved = ""
	e.dirty = false
	e.pages = nil
	e.files = nil
	e.mu.Unlock()
	e.logger.Debug("signed out, editor state cleared")
}
