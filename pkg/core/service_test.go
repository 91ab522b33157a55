package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aretw0/mdninja/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTransport answers requests in memory. Each route returns the value
// to decode into out, or an error.
type MockTransport struct {
	routes map[string]func(params any) (any, error)
	calls  []string
}

func NewMockTransport() *MockTransport {
	return &MockTransport{routes: make(map[string]func(params any) (any, error))}
}

func (m *MockTransport) On(path string, fn func(params any) (any, error)) {
	m.routes[path] = fn
}

func (m *MockTransport) Request(ctx context.Context, path string, params any, out any) error {
	m.calls = append(m.calls, path)
	fn, ok := m.routes[path]
	if !ok {
		return &core.APIError{Path: path, StatusCode: http.StatusNotFound, Raw: "No such path"}
	}
	v, err := fn(params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *MockTransport) Upload(ctx context.Context, path string, upload core.Upload, progress core.ProgressFunc, out any) error {
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return err
	}
	if progress != nil {
		progress(50)
		progress(100)
	}
	return m.Request(ctx, path, map[string]string{"name": upload.Name, "body": string(data)}, out)
}

func forbidden(path string) error {
	return &core.APIError{Path: path, StatusCode: http.StatusForbidden, Raw: "Not authorized"}
}

// newAuthBackend wires login/logout/check around a single account.
func newAuthBackend() *MockTransport {
	m := NewMockTransport()
	loggedIn := false
	m.On(core.PathLogin, func(params any) (any, error) {
		data, _ := json.Marshal(params)
		var c struct{ Domain, Password string }
		_ = json.Unmarshal(data, &c)
		if c.Domain == "testdomain" && c.Password == "mytestpass" {
			loggedIn = true
			return core.Response{Result: core.ResultOK}, nil
		}
		return nil, &core.APIError{Path: core.PathLogin, StatusCode: http.StatusForbidden, Response: core.Response{Error: true, Result: "invalid-credentials"}}
	})
	m.On(core.PathLogout, func(any) (any, error) {
		loggedIn = false
		return core.Response{Result: core.ResultOK}, nil
	})
	m.On(core.PathCheck, func(any) (any, error) {
		if !loggedIn {
			return nil, forbidden(core.PathCheck)
		}
		return map[string]any{"user": core.User{Name: "Test User", Domain: "testdomain", Email: "test@test.com"}}, nil
	})
	return m
}

func authEvents(svc *core.Service) *[]bool {
	var got []bool
	core.Listen(svc.Bus(), "test", func(e core.AuthChanged) { got = append(got, e.Authenticated) })
	return &got
}

func TestService_CheckAuthWithoutSession(t *testing.T) {
	svc := core.NewService(core.Config{Transport: newAuthBackend()})
	events := authEvents(svc)

	assert.False(t, svc.CheckAuth(context.Background()))
	assert.False(t, svc.Authenticated())
	assert.Nil(t, svc.User())
	assert.Empty(t, *events, "no transition, no event")
}

func TestService_Login(t *testing.T) {
	svc := core.NewService(core.Config{Transport: newAuthBackend()})
	events := authEvents(svc)
	ctx := context.Background()

	ok, err := svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, svc.Authenticated())
	assert.Equal(t, []bool{true}, *events, "exactly one transition event")

	user := svc.User()
	require.NotNil(t, user)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "testdomain", user.Domain)

	// A second successful check is not a transition.
	assert.True(t, svc.CheckAuth(ctx))
	assert.Len(t, *events, 1)
}

func TestService_LoginFailure(t *testing.T) {
	svc := core.NewService(core.Config{Transport: newAuthBackend()})
	ctx := context.Background()

	ok, err := svc.Login(ctx, "test", "fake")
	assert.False(t, ok)
	assert.ErrorIs(t, err, core.ErrLoginFailed)
	assert.Equal(t, http.StatusForbidden, core.StatusCode(err))
	assert.False(t, svc.Authenticated())
}

func TestService_LoginUnexpectedResult(t *testing.T) {
	m := NewMockTransport()
	m.On(core.PathLogin, func(any) (any, error) { return core.Response{Result: "nope"}, nil })
	svc := core.NewService(core.Config{Transport: m})

	ok, err := svc.Login(context.Background(), "a", "b")
	assert.False(t, ok)
	assert.Equal(t, core.ErrLoginFailed, err)
	assert.NotContains(t, m.calls, core.PathCheck)
}

func TestService_Logout(t *testing.T) {
	svc := core.NewService(core.Config{Transport: newAuthBackend()})
	events := authEvents(svc)
	ctx := context.Background()

	_, err := svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.Authenticated())
	assert.Nil(t, svc.User())
	assert.Equal(t, []bool{true, false}, *events)
}

func TestService_LogoutRequestFailureIsSwallowed(t *testing.T) {
	m := NewMockTransport()
	m.On(core.PathLogout, func(any) (any, error) { return nil, errors.New("network down") })
	m.On(core.PathCheck, func(any) (any, error) { return nil, forbidden(core.PathCheck) })
	svc := core.NewService(core.Config{Transport: m})

	assert.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, []string{core.PathLogout, core.PathCheck}, m.calls)
}

func TestService_StartUsesHintThenServer(t *testing.T) {
	store := &core.MemorySessionStore{}
	require.NoError(t, store.SaveHint(true))

	svc := core.NewService(core.Config{Transport: newAuthBackend(), Sessions: store})
	events := authEvents(svc)

	require.NoError(t, svc.Start(context.Background()))
	assert.False(t, svc.Authenticated(), "server round-trip supersedes the hint")
	assert.Equal(t, []bool{false}, *events)

	hint, err := store.LoadHint()
	require.NoError(t, err)
	assert.False(t, hint)
}

func TestService_Close(t *testing.T) {
	svc := core.NewService(core.Config{Transport: newAuthBackend()})
	events := authEvents(svc)
	ctx := context.Background()

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	_, err := svc.Pages(ctx)
	assert.ErrorIs(t, err, core.ErrClosed)
	assert.ErrorIs(t, svc.Start(ctx), core.ErrClosed)
	assert.ErrorIs(t, svc.Logout(ctx), core.ErrClosed)

	svc.Bus().Emit(core.AuthChanged{Authenticated: true})
	assert.Empty(t, *events, "close tears the bus down")
}

func TestService_CloseKeepsSession(t *testing.T) {
	store := &core.MemorySessionStore{}
	svc := core.NewService(core.Config{Transport: newAuthBackend(), Sessions: store})
	ctx := context.Background()

	ok, err := svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, svc.Close())

	assert.True(t, svc.CheckAuth(ctx), "closed service reports its last state")
	assert.True(t, svc.Authenticated())
	require.NotNil(t, svc.User())

	hint, err := store.LoadHint()
	require.NoError(t, err)
	assert.True(t, hint, "hint saved by Close survives")
}

func TestService_Signup(t *testing.T) {
	m := newAuthBackend()
	m.On(core.PathSignup, func(any) (any, error) {
		// The backend signs the new account in.
		_, err := m.routes[core.PathLogin](map[string]string{"domain": "testdomain", "password": "mytestpass"})
		return core.Response{Result: core.ResultOK}, err
	})
	svc := core.NewService(core.Config{Transport: m})

	resp, err := svc.Signup(context.Background(), core.SignupParams{
		Name:     "Test User",
		Domain:   "testdomain",
		Email:    "test@test.com",
		Password: "mytestpass",
	})
	require.NoError(t, err)
	assert.False(t, resp.Error)
	assert.True(t, svc.Authenticated())
	assert.Equal(t, "Test User", svc.User().Name)
}

func TestService_SignupValidation(t *testing.T) {
	m := NewMockTransport()
	svc := core.NewService(core.Config{Transport: m})

	_, err := svc.Signup(context.Background(), core.SignupParams{Name: "x", Domain: "bad domain", Email: "a@b.co", Password: "longpass"})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "domain", ve.Field)
	assert.Empty(t, m.calls, "nothing is sent when validation fails")
}

func TestService_CheckDomain(t *testing.T) {
	m := NewMockTransport()
	m.On(core.PathCheckDomain, func(params any) (any, error) {
		data, _ := json.Marshal(params)
		if strings.Contains(string(data), "taken") {
			return core.Response{Result: "domain-unavailable"}, nil
		}
		return core.Response{Result: core.ResultDomainAvailable}, nil
	})
	svc := core.NewService(core.Config{Transport: m})
	ctx := context.Background()

	free, err := svc.CheckDomain(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = svc.CheckDomain(ctx, "taken")
	require.NoError(t, err)
	assert.False(t, free)

	_, err = svc.CheckDomain(ctx, "not valid")
	assert.True(t, core.IsValidation(err))
}

func TestService_UpdateCustomDomain(t *testing.T) {
	m := newAuthBackend()
	m.On(core.PathCustomDomain, func(params any) (any, error) {
		data, _ := json.Marshal(params)
		if strings.Contains(string(data), "taken.com") {
			return nil, &core.APIError{Path: core.PathCustomDomain, StatusCode: http.StatusBadRequest, Response: core.Response{Error: true, Result: core.ResultDuplicate}}
		}
		return core.Response{Result: core.ResultOK}, nil
	})
	svc := core.NewService(core.Config{Transport: m})
	ctx := context.Background()
	_, err := svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateCustomDomain(ctx, "taken.com"), core.ErrDomainTaken)
	require.NoError(t, svc.UpdateCustomDomain(ctx, "mine.com"))
	assert.Equal(t, "mine.com", svc.User().ExternalDomain)
}

func TestService_UpdateEmailAndPassword(t *testing.T) {
	m := newAuthBackend()
	m.On(core.PathUpdateEmail, func(any) (any, error) { return core.Response{Result: core.ResultOK}, nil })
	m.On(core.PathUpdatePass, func(any) (any, error) { return core.Response{Result: core.ResultOK}, nil })
	svc := core.NewService(core.Config{Transport: m})
	ctx := context.Background()
	_, err := svc.Login(ctx, "testdomain", "mytestpass")
	require.NoError(t, err)

	assert.True(t, core.IsValidation(svc.UpdateEmail(ctx, "broken")))
	require.NoError(t, svc.UpdateEmail(ctx, "new@test.com"))
	assert.Equal(t, "new@test.com", svc.User().Email)

	assert.True(t, core.IsValidation(svc.UpdatePassword(ctx, "abc", "abc")))
	assert.True(t, core.IsValidation(svc.UpdatePassword(ctx, "abcdef", "abcdeg")))
	require.NoError(t, svc.UpdatePassword(ctx, "abcdef", "abcdef"))
}

func TestService_PagesAndFiles(t *testing.T) {
	m := NewMockTransport()
	m.On(core.PathPages, func(any) (any, error) {
		return []core.Page{{Name: "index.md", Markdown: "# hi"}}, nil
	})
	m.On(core.PathPage, func(any) (any, error) {
		return core.Page{Name: "index.md", Markdown: "# hi"}, nil
	})
	m.On(core.PathUpload, func(params any) (any, error) {
		return core.Response{Result: core.ResultOK}, nil
	})
	svc := core.NewService(core.Config{Transport: m})
	ctx := context.Background()

	pages, err := svc.Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "index.md", pages[0].Name)

	page, err := svc.GetPage(ctx, "index.md")
	require.NoError(t, err)
	assert.Equal(t, "# hi", page.Markdown)

	_, err = svc.GetPage(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptyName)

	var percents []float64
	var events []float64
	core.Listen(svc.Bus(), "progress", func(e core.UploadProgress) { events = append(events, e.Percent) })
	require.NoError(t, svc.UploadFile(ctx, "cv.pdf", strings.NewReader("pdf"), func(p float64) { percents = append(percents, p) }))
	assert.Equal(t, []float64{50, 100}, percents)
	assert.Equal(t, percents, events)

	_, err = svc.Files(ctx)
	assert.Equal(t, http.StatusNotFound, core.StatusCode(err))
}
