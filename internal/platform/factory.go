package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/mdninja/pkg/adapters/fs"
	"github.com/aretw0/mdninja/pkg/adapters/remote"
	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/editor"
	"github.com/aretw0/mdninja/pkg/render"
)

// New wires a Service for the backend at baseURL. It does not touch the
// network; call Start (or use Open).
//
//	svc, err := mdninja.New("https://mdninja.example", mdninja.WithLogger(logger))
func New(baseURL string, opts ...Option) (*core.Service, error) {
	o := apply(opts)
	// One spelling per backend, so the session file matches the client.
	baseURL = strings.TrimRight(baseURL, "/")

	sessions := o.sessions
	cookies := o.cookies

	if !o.ephemeral && (sessions == nil || cookies == nil) {
		file, err := sessionFile(baseURL, o)
		if err != nil {
			return nil, err
		}
		if sessions == nil {
			sessions = file
		}
		if cookies == nil {
			cookies = file
		}
	}

	transport := o.transport
	if transport == nil {
		client, err := remote.NewClient(remote.Config{
			BaseURL:    baseURL,
			HTTPClient: o.httpClient,
			Cookies:    cookies,
			Logger:     o.logger,
		})
		if err != nil {
			return nil, err
		}
		transport = client
	}

	return core.NewService(core.Config{
		Transport: transport,
		Sessions:  sessions,
		Bus:       o.bus,
		Logger:    o.logger,
	}), nil
}

// Open is New followed by Start.
func Open(ctx context.Context, baseURL string, opts ...Option) (*core.Service, error) {
	svc, err := New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// NewEditor creates an editor on svc, attached to its bus with ctx.
func NewEditor(ctx context.Context, svc *core.Service, opts ...Option) *editor.Editor {
	o := apply(opts)
	ed := editor.New(editor.Config{
		API:      svc,
		Renderer: renderer(o),
		Key:      o.editorKey,
		Logger:   o.logger,
	})
	ed.Attach(ctx)
	return ed
}

func sessionFile(baseURL string, o *options) (*fs.SessionFile, error) {
	path := o.sessionPath
	if path == "" {
		def, err := fs.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = def
	}

	useTemp := o.devSafety && IsDevRun()
	resolved := ResolveSessionPath(path, useTemp)
	if useTemp && resolved != path {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_session", path, "resolved_session", resolved)
	}
	if resolved == "" {
		return nil, fmt.Errorf("no session file location")
	}
	return fs.NewSessionFile(resolved, baseURL), nil
}

func renderer(o *options) core.Renderer {
	if o.renderer != nil {
		return o.renderer
	}
	return render.NewMarkdown()
}
