package platform

import (
	"log/slog"
	"net/http"

	"github.com/aretw0/mdninja/pkg/adapters/remote"
	"github.com/aretw0/mdninja/pkg/core"
)

// options holds the internal configuration for an mdninja client.
type options struct {
	logger      *slog.Logger
	httpClient  *http.Client
	transport   core.Transport
	sessions    core.SessionStore
	cookies     remote.CookieStore
	sessionPath string
	ephemeral   bool
	devSafety   bool
	bus         *core.Bus
	renderer    core.Renderer
	editorKey   string
	pattern     string
	autoInit    bool
	onWatchErr  func(error)
}

// Option defines a functional option for configuring mdninja.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		devSafety: true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used by the remote transport. Its
// cookie jar is replaced; its timeout is kept (none by default).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTransport injects a custom transport (e.g. a mock). The HTTP client,
// cookie and session file options are then ignored for transport purposes.
func WithTransport(t core.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithSessionFile sets the session file location. Defaults to
// <user config dir>/mdninja/session.yaml.
func WithSessionFile(path string) Option {
	return func(o *options) {
		o.sessionPath = path
	}
}

// WithSessionStore injects the hint store. Cookies are then kept in memory
// unless WithCookieStore is also given.
func WithSessionStore(s core.SessionStore) Option {
	return func(o *options) {
		o.sessions = s
	}
}

// WithCookieStore injects the cookie store of the remote transport.
func WithCookieStore(c remote.CookieStore) Option {
	return func(o *options) {
		o.cookies = c
	}
}

// WithEphemeralSession keeps the session in memory only: nothing is read
// from or written to disk.
func WithEphemeralSession(enabled bool) Option {
	return func(o *options) {
		o.ephemeral = enabled
	}
}

// WithDevSafety controls the sandbox used under `go run` and `go test`:
// by default (true) the session file is moved to a temporary directory so
// dev runs never replace the user's real login.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithBus shares an existing event bus.
func WithBus(b *core.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithRenderer replaces the markdown renderer of the editor and mirror.
func WithRenderer(r core.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithEditorKey sets the subscriber key of the editor.
func WithEditorKey(key string) Option {
	return func(o *options) {
		o.editorKey = key
	}
}

// WithPattern sets the doublestar pattern of mirrored pages.
func WithPattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithAutoInit makes OpenMirror create the mirror root when none is found.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithWatcherErrorHandler registers a callback for errors of the watch loop
// (permission denied, failed saves), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onWatchErr = fn
	}
}
