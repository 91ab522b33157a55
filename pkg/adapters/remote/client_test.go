package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/mdninja/internal/fakeapi"
	"github.com/aretw0/mdninja/pkg/adapters/remote"
	"github.com/aretw0/mdninja/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCookies struct {
	mu      sync.Mutex
	cookies []*http.Cookie
	saves   int
}

func (m *memCookies) LoadCookies() ([]*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cookies, nil
}

func (m *memCookies) SaveCookies(c []*http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = c
	m.saves++
	return nil
}

func setup(t *testing.T) (*fakeapi.Server, *httptest.Server) {
	t.Helper()
	backend := fakeapi.New()
	require.NoError(t, backend.AddUser(core.User{Name: "Test User", Domain: "testdomain", Email: "test@test.com"}, "mytestpass"))
	ts := backend.Start()
	t.Cleanup(ts.Close)
	return backend, ts
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := remote.NewClient(remote.Config{BaseURL: "not a url"})
	assert.Error(t, err)

	_, err = remote.NewClient(remote.Config{BaseURL: "localhost:8080"})
	assert.Error(t, err)
}

func TestClient_RequestSuccessAndCookies(t *testing.T) {
	_, ts := setup(t)
	store := &memCookies{}
	c, err := remote.NewClient(remote.Config{BaseURL: ts.URL + "/", Cookies: store})
	require.NoError(t, err)
	ctx := context.Background()

	var resp core.Response
	require.NoError(t, c.Request(ctx, core.PathLogin, map[string]string{"domain": "testdomain", "password": "mytestpass"}, &resp))
	assert.Equal(t, core.ResultOK, resp.Result)
	assert.Equal(t, 1, store.saves)
	require.Len(t, store.cookies, 1)
	assert.Equal(t, fakeapi.SessionCookie, store.cookies[0].Name)

	var check struct {
		User core.User `json:"user"`
	}
	require.NoError(t, c.Request(ctx, core.PathCheck, nil, &check))
	assert.Equal(t, "testdomain", check.User.Domain)
}

func TestClient_RestoresCookies(t *testing.T) {
	_, ts := setup(t)
	store := &memCookies{}
	ctx := context.Background()

	first, err := remote.NewClient(remote.Config{BaseURL: ts.URL, Cookies: store})
	require.NoError(t, err)
	require.NoError(t, first.Request(ctx, core.PathLogin, map[string]string{"domain": "testdomain", "password": "mytestpass"}, nil))

	second, err := remote.NewClient(remote.Config{BaseURL: ts.URL, Cookies: store})
	require.NoError(t, err)
	assert.NoError(t, second.Request(ctx, core.PathCheck, nil, nil), "session survives a new client")
}

func TestClient_NonOKIsAPIError(t *testing.T) {
	_, ts := setup(t)
	c, err := remote.NewClient(remote.Config{BaseURL: ts.URL})
	require.NoError(t, err)
	ctx := context.Background()

	// JSON error body.
	err = c.Request(ctx, core.PathLogin, map[string]string{"domain": "testdomain", "password": "wrong"}, nil)
	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.True(t, apiErr.Response.Error)
	assert.Equal(t, "invalid-credentials", apiErr.Response.Result)

	// Plain-text error body.
	err = c.Request(ctx, core.PathCheck, nil, nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Not authorized", apiErr.Raw)
	assert.Contains(t, err.Error(), "/api/auth/check")

	// Unknown path.
	err = c.Request(ctx, "/api/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, core.StatusCode(err))
}

func TestClient_SendsJSONPost(t *testing.T) {
	var gotMethod, gotType, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer ts.Close()

	c, err := remote.NewClient(remote.Config{BaseURL: ts.URL})
	require.NoError(t, err)

	require.NoError(t, c.Request(context.Background(), "api/edit/page", map[string]string{"name": "index.md"}, nil))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"name":"index.md"}`, gotBody)
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("You are logged in."))
	}))
	defer ts.Close()

	c, err := remote.NewClient(remote.Config{BaseURL: ts.URL})
	require.NoError(t, err)

	var resp core.Response
	err = c.Request(context.Background(), core.PathLogin, nil, &resp)
	assert.ErrorContains(t, err, "failed to parse response")
	assert.NoError(t, c.Request(context.Background(), core.PathLogin, nil, nil), "discarded bodies are not parsed")
}

func TestClient_Upload(t *testing.T) {
	backend, ts := setup(t)
	c, err := remote.NewClient(remote.Config{BaseURL: ts.URL})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Request(ctx, core.PathLogin, map[string]string{"domain": "testdomain", "password": "mytestpass"}, nil))

	var percents []float64
	var resp core.Response
	content := strings.Repeat("x", 64<<10)
	err = c.Upload(ctx, core.PathUpload, core.Upload{Name: "photo.png", Body: strings.NewReader(content)}, func(p float64) {
		percents = append(percents, p)
	}, &resp)
	require.NoError(t, err)
	assert.Equal(t, core.ResultOK, resp.Result)

	require.NotEmpty(t, percents)
	assert.InDelta(t, 100.0, percents[len(percents)-1], 0.001)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}

	data, ok := backend.FileData("testdomain", "photo.png")
	require.True(t, ok)
	assert.Equal(t, content, string(data))
}

func TestClient_UploadRejected(t *testing.T) {
	_, ts := setup(t)
	c, err := remote.NewClient(remote.Config{BaseURL: ts.URL})
	require.NoError(t, err)

	err = c.Upload(context.Background(), core.PathUpload, core.Upload{Name: "x.png", Body: strings.NewReader("x")}, nil, nil)
	assert.Equal(t, http.StatusForbidden, core.StatusCode(err), "uploads need a session")
}

func TestClient_State(t *testing.T) {
	_, ts := setup(t)
	c, err := remote.NewClient(remote.Config{BaseURL: ts.URL})
	require.NoError(t, err)
	_ = c.Request(context.Background(), core.PathCheck, nil, nil)

	state, ok := c.State().(remote.ClientState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Requests)
	assert.Equal(t, 1, state.Failures)
	assert.Equal(t, "remote", c.ComponentType())
}
