// Package mirror keeps a local directory of page files in step with the
// site: Pull writes every page to disk, Push sends local edits back, and
// Watch turns file writes into editor saves.
package mirror

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/mdninja/pkg/adapters/fs"
	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/validate"
)

// DefaultPattern selects the files treated as pages.
const DefaultPattern = "*.md"

// PageAPI is the part of core.Service the mirror needs.
type PageAPI interface {
	Pages(ctx context.Context) ([]core.Page, error)
	GetPage(ctx context.Context, name string) (core.Page, error)
	CreatePage(ctx context.Context, p core.Page) (core.Page, error)
	EditPage(ctx context.Context, p core.Page) error
}

// Config configures a Mirror.
type Config struct {
	Root     string
	Pattern  string // doublestar pattern relative to Root; DefaultPattern when empty
	API      PageAPI
	Renderer core.Renderer
	Logger   *slog.Logger

	// ErrorHandler receives runtime watcher errors. They are logged either way.
	ErrorHandler func(error)
}

// Mirror is a local directory of page files.
type Mirror struct {
	root     string
	pattern  string
	api      PageAPI
	renderer core.Renderer
	logger   *slog.Logger
	onError  func(error)

	mu            sync.Mutex
	known         map[string][sha256.Size]byte // content last synced, by page name
	watcherActive bool
	lastPull      int
	lastPush      int
}

// New validates cfg and returns a Mirror.
func New(cfg Config) (*Mirror, error) {
	if cfg.Root == "" {
		return nil, errors.New("mirror root is required")
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mirror{
		root:     root,
		pattern:  pattern,
		api:      cfg.API,
		renderer: cfg.Renderer,
		logger:   logger.With("component", "mirror"),
		onError:  cfg.ErrorHandler,
		known:    make(map[string][sha256.Size]byte),
	}, nil
}

// Root returns the absolute mirror directory.
func (m *Mirror) Root() string {
	return m.root
}

// Pull writes every remote page into the mirror and returns their names.
func (m *Mirror) Pull(ctx context.Context) ([]string, error) {
	pages, err := m.api.Pages(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(pages))
	for _, listed := range pages {
		if validate.Filename(listed.Name) != nil {
			m.logger.Warn("skipping page with unsafe name", "name", listed.Name)
			continue
		}
		p, err := m.api.GetPage(ctx, listed.Name)
		if err != nil {
			return names, err
		}
		if err := fs.WriteFileAtomic(filepath.Join(m.root, listed.Name), []byte(p.Markdown), 0644); err != nil {
			return names, err
		}
		m.remember(listed.Name, p.Markdown)
		names = append(names, listed.Name)
	}

	m.mu.Lock()
	m.lastPull = len(names)
	m.mu.Unlock()
	m.logger.Info("pulled pages", "count", len(names))
	return names, nil
}

// Push sends every local page matching the pattern whose content differs
// from the remote copy. Missing pages are created. It returns the names sent.
func (m *Mirror) Push(ctx context.Context) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(m.root), m.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", m.pattern, err)
	}

	remote, err := m.api.Pages(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]string, len(remote))
	for _, p := range remote {
		existing[p.Name] = p.Markdown
	}

	var sent []string
	for _, rel := range matches {
		name, ok := m.pageName(rel)
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.root, filepath.FromSlash(rel)))
		if err != nil {
			return sent, fmt.Errorf("failed to read %s: %w", rel, err)
		}
		markdown := string(data)
		if current, found := existing[name]; found && current == markdown {
			m.remember(name, markdown)
			continue
		}
		if err := m.upsert(ctx, name, markdown, existing); err != nil {
			return sent, err
		}
		sent = append(sent, name)
	}

	m.mu.Lock()
	m.lastPush = len(sent)
	m.mu.Unlock()
	m.logger.Info("pushed pages", "count", len(sent))
	return sent, nil
}

func (m *Mirror) upsert(ctx context.Context, name, markdown string, existing map[string]string) error {
	html, err := m.render(markdown)
	if err != nil {
		return err
	}
	p := core.Page{Name: name, Markdown: markdown, HTML: html}
	if _, found := existing[name]; found {
		err = m.api.EditPage(ctx, p)
	} else {
		_, err = m.api.CreatePage(ctx, p)
	}
	if err != nil {
		return err
	}
	m.remember(name, markdown)
	return nil
}

// pageName maps a slash-separated path relative to the root to a page
// name. Pages are flat: nested files, the marker dir and temp files are
// not pages.
func (m *Mirror) pageName(rel string) (string, bool) {
	if filepath.Base(filepath.Dir(filepath.FromSlash(rel))) == MarkerDir || fs.IsTempFile(rel) {
		return "", false
	}
	if ok, _ := doublestar.Match(m.pattern, rel); !ok {
		return "", false
	}
	if filepath.Dir(filepath.FromSlash(rel)) != "." {
		m.logger.Debug("skipping nested file", "path", rel)
		return "", false
	}
	if validate.Filename(rel) != nil {
		m.logger.Warn("skipping file with unsafe name", "path", rel)
		return "", false
	}
	return rel, true
}

// changed reports whether content differs from what was last synced.
func (m *Mirror) changed(name, content string) bool {
	sum := sha256.Sum256([]byte(content))
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.known[name]
	return !ok || prev != sum
}

func (m *Mirror) remember(name, content string) {
	sum := sha256.Sum256([]byte(content))
	m.mu.Lock()
	m.known[name] = sum
	m.mu.Unlock()
}

func (m *Mirror) render(markdown string) (string, error) {
	if m.renderer == nil {
		return "", nil
	}
	return m.renderer.Render(markdown)
}

func (m *Mirror) setWatcherActive(active bool) {
	m.mu.Lock()
	m.watcherActive = active
	m.mu.Unlock()
}

func (m *Mirror) reportError(err error) {
	m.logger.Error("watcher error", "error", err)
	if m.onError != nil {
		m.onError(err)
	}
}
