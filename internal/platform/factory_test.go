package platform_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdninja/internal/fakeapi"
	"github.com/aretw0/mdninja/internal/platform"
	"github.com/aretw0/mdninja/pkg/core"
)

func startBackend(t *testing.T) (*fakeapi.Server, *httptest.Server) {
	t.Helper()
	backend := fakeapi.New()
	require.NoError(t, backend.AddUser(core.User{Name: "Test User", Domain: "testdomain", Email: "test@test.com"}, "mytestpass"))
	backend.AddPage("testdomain", core.Page{Name: "index.md", Markdown: "# Home"})
	ts := backend.Start()
	t.Cleanup(ts.Close)
	return backend, ts
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := platform.New("not a url", platform.WithEphemeralSession(true))
	assert.Error(t, err)
}

func TestOpen_SessionSurvivesRestart(t *testing.T) {
	_, ts := startBackend(t)
	ctx := context.Background()
	session := filepath.Join(t.TempDir(), "session.yaml")

	first, err := platform.Open(ctx, ts.URL, platform.WithSessionFile(session))
	require.NoError(t, err)
	assert.False(t, first.Authenticated())

	ok, err := first.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, first.Close())

	// A new process: cookie and hint come from the session file.
	second, err := platform.Open(ctx, ts.URL, platform.WithSessionFile(session))
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.Authenticated())
	require.NotNil(t, second.User())
	assert.Equal(t, "testdomain", second.User().Domain)

	require.NoError(t, second.Logout(ctx))
	third, err := platform.Open(ctx, ts.URL, platform.WithSessionFile(session))
	require.NoError(t, err)
	defer third.Close()
	assert.False(t, third.Authenticated())
}

func TestOpen_TrailingSlashSharesSession(t *testing.T) {
	_, ts := startBackend(t)
	ctx := context.Background()
	session := filepath.Join(t.TempDir(), "session.yaml")

	first, err := platform.Open(ctx, ts.URL+"/", platform.WithSessionFile(session))
	require.NoError(t, err)
	_, err = first.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := platform.Open(ctx, ts.URL, platform.WithSessionFile(session))
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.Authenticated())
}

func TestOpen_EphemeralSession(t *testing.T) {
	_, ts := startBackend(t)
	ctx := context.Background()

	svc, err := platform.Open(ctx, ts.URL, platform.WithEphemeralSession(true))
	require.NoError(t, err)
	_, err = svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	again, err := platform.Open(ctx, ts.URL, platform.WithEphemeralSession(true))
	require.NoError(t, err)
	defer again.Close()
	assert.False(t, again.Authenticated())
}

func TestOpen_SharedBus(t *testing.T) {
	_, ts := startBackend(t)
	ctx := context.Background()

	bus := core.NewBus(nil)
	var events []core.AuthChanged
	core.Listen(bus, "test", func(e core.AuthChanged) { events = append(events, e) })

	svc, err := platform.Open(ctx, ts.URL, platform.WithEphemeralSession(true), platform.WithBus(bus))
	require.NoError(t, err)
	defer svc.Close()
	assert.Same(t, bus, svc.Bus())

	_, err = svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Authenticated)
}

func TestNewEditor(t *testing.T) {
	backend, ts := startBackend(t)
	ctx := context.Background()

	svc, err := platform.Open(ctx, ts.URL, platform.WithEphemeralSession(true))
	require.NoError(t, err)
	defer svc.Close()
	_, err = svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)

	ed := platform.NewEditor(ctx, svc, platform.WithEditorKey("cli"))
	defer ed.Close()
	assert.Equal(t, "cli", ed.Key())

	require.NoError(t, ed.Open(ctx, "index.md"))
	require.NoError(t, ed.SetMarkdown("# Home\n\n*new*"))
	svc.Bus().Emit(core.SaveShortcut{})

	p, _ := backend.Page("testdomain", "index.md")
	assert.Contains(t, p.HTML, "<em>new</em>")
}
