package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/mirror"
)

// OpenMirror opens the mirror whose root is dir or one of its parents.
// With WithAutoInit a missing root is created at dir.
func OpenMirror(dir string, svc *core.Service, opts ...Option) (*mirror.Mirror, error) {
	o := apply(opts)

	root, err := mirror.FindRoot(dir)
	if errors.Is(err, mirror.ErrNoRoot) && o.autoInit {
		root, err = mirror.Init(dir)
		if err == nil {
			o.logger.Info("initialized mirror", "root", root)
		}
	}
	if err != nil {
		return nil, err
	}

	return mirror.New(mirror.Config{
		Root:         root,
		Pattern:      o.pattern,
		API:          svc,
		Renderer:     renderer(o),
		Logger:       o.logger,
		ErrorHandler: o.onWatchErr,
	})
}

// Pull writes every page of the signed-in site into the mirror at dir.
func Pull(ctx context.Context, dir string, svc *core.Service, opts ...Option) ([]string, error) {
	m, err := OpenMirror(dir, svc, opts...)
	if err != nil {
		return nil, err
	}
	return m.Pull(ctx)
}

// Push sends the changed local pages of the mirror at dir.
func Push(ctx context.Context, dir string, svc *core.Service, opts ...Option) ([]string, error) {
	m, err := OpenMirror(dir, svc, opts...)
	if err != nil {
		return nil, err
	}
	return m.Push(ctx)
}

// Watch saves local edits of the mirror at dir through an editor until ctx
// is done.
func Watch(ctx context.Context, dir string, svc *core.Service, opts ...Option) error {
	if !svc.Authenticated() {
		return fmt.Errorf("watch: %w", core.ErrNotAuthenticated)
	}
	m, err := OpenMirror(dir, svc, opts...)
	if err != nil {
		return err
	}
	ed := NewEditor(ctx, svc, opts...)
	defer ed.Close()

	return m.Follow(ctx, ed, svc.Bus())
}
