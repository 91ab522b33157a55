package mdninja

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/mdninja/internal/platform"
	"github.com/aretw0/mdninja/pkg/adapters/remote"
	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/editor"
	"github.com/aretw0/mdninja/pkg/mirror"
	"github.com/aretw0/mdninja/pkg/render"
	"github.com/aretw0/mdninja/pkg/validate"
)

// --- Types ---

// Service is the API client: session state, event bus and backend calls.
type Service = core.Service

// Editor is the page/file editing workflow.
type Editor = editor.Editor

// Mirror is a local directory of pages.
type Mirror = mirror.Mirror

// User, Page and File are the records owned by the backend.
type (
	User = core.User
	Page = core.Page
	File = core.File
)

// --- Configuration ---

// Option defines a functional option for configuring mdninja.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithHTTPClient sets the HTTP client of the transport.
func WithHTTPClient(c *http.Client) Option {
	return platform.WithHTTPClient(c)
}

// WithTransport injects a custom transport.
func WithTransport(t core.Transport) Option {
	return platform.WithTransport(t)
}

// WithSessionFile sets the session file location.
func WithSessionFile(path string) Option {
	return platform.WithSessionFile(path)
}

// WithSessionStore injects the sign-in hint store.
func WithSessionStore(s core.SessionStore) Option {
	return platform.WithSessionStore(s)
}

// WithCookieStore injects the cookie store.
func WithCookieStore(c remote.CookieStore) Option {
	return platform.WithCookieStore(c)
}

// WithEphemeralSession keeps the session in memory only.
func WithEphemeralSession(enabled bool) Option {
	return platform.WithEphemeralSession(enabled)
}

// WithDevSafety controls the session sandbox of `go run` / `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithBus shares an existing event bus.
func WithBus(b *core.Bus) Option {
	return platform.WithBus(b)
}

// WithRenderer replaces the markdown renderer.
func WithRenderer(r core.Renderer) Option {
	return platform.WithRenderer(r)
}

// WithEditorKey sets the subscriber key of the editor.
func WithEditorKey(key string) Option {
	return platform.WithEditorKey(key)
}

// WithPattern sets the doublestar pattern of mirrored pages.
func WithPattern(pattern string) Option {
	return platform.WithPattern(pattern)
}

// WithAutoInit creates the mirror root when none is found.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithWatcherErrorHandler receives errors of the watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a Service for the backend at baseURL without touching the
// network.
func New(baseURL string, opts ...Option) (*Service, error) {
	return platform.New(baseURL, opts...)
}

// Open creates and starts a Service.
func Open(ctx context.Context, baseURL string, opts ...Option) (*Service, error) {
	return platform.Open(ctx, baseURL, opts...)
}

// NewEditor creates an editor attached to the bus of svc.
func NewEditor(ctx context.Context, svc *Service, opts ...Option) *Editor {
	return platform.NewEditor(ctx, svc, opts...)
}

// --- Mirror ---

// OpenMirror opens the mirror rooted at dir or one of its parents.
func OpenMirror(dir string, svc *Service, opts ...Option) (*Mirror, error) {
	return platform.OpenMirror(dir, svc, opts...)
}

// Pull writes every page into the mirror at dir.
func Pull(ctx context.Context, dir string, svc *Service, opts ...Option) ([]string, error) {
	return platform.Pull(ctx, dir, svc, opts...)
}

// Push sends the changed local pages of the mirror at dir.
func Push(ctx context.Context, dir string, svc *Service, opts ...Option) ([]string, error) {
	return platform.Push(ctx, dir, svc, opts...)
}

// Watch saves local edits of the mirror at dir until ctx is done.
func Watch(ctx context.Context, dir string, svc *Service, opts ...Option) error {
	return platform.Watch(ctx, dir, svc, opts...)
}

// FindMirrorRoot looks upwards for a mirror marker.
func FindMirrorRoot(startDir string) (string, error) {
	return mirror.FindRoot(startDir)
}

// --- Utils ---

// Render converts page markdown to sanitised HTML.
func Render(markdown string) (string, error) {
	return render.MarkdownToHTML(markdown)
}

// SuggestDomain derives a site domain from a display name.
func SuggestDomain(name string) string {
	return validate.SuggestDomain(name)
}
