package core

import (
	"context"
	"io"
	"sync"
)

// Transport defines the contract for reaching the backend.
// Adhering to this interface keeps the service independent of the HTTP
// client in use (real network, httptest, in-memory fakes).
type Transport interface {
	// Request sends params as a single JSON POST to path and decodes a 200
	// reply into out (nil discards it). Any other status is an *APIError.
	Request(ctx context.Context, path string, params any, out any) error

	// Upload sends a multipart form with the "file" and "name" fields.
	// progress, when not nil, receives the percentage of the body sent.
	Upload(ctx context.Context, path string, upload Upload, progress ProgressFunc, out any) error
}

// Upload is the payload of a multipart file upload.
type Upload struct {
	Name     string
	Filename string
	Body     io.Reader
}

// ProgressFunc receives upload progress in percent (0-100).
type ProgressFunc func(percent float64)

// SessionStore persists the authenticated hint between runs.
// The hint is only a fast first guess; the server is authoritative.
type SessionStore interface {
	LoadHint() (bool, error)
	SaveHint(authenticated bool) error
}

// MemorySessionStore keeps the hint in memory. It is the default store.
type MemorySessionStore struct {
	mu            sync.Mutex
	authenticated bool
}

func (m *MemorySessionStore) LoadHint() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated, nil
}

func (m *MemorySessionStore) SaveHint(authenticated bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = authenticated
	return nil
}

// API paths.
const (
	PathLogin        = "/api/auth/login"
	PathLogout       = "/api/auth/logout"
	PathCheck        = "/api/auth/check"
	PathSignup       = "/api/auth/signup"
	PathCheckDomain  = "/api/auth/check_domain"
	PathUpdateEmail  = "/api/account/update_email"
	PathUpdatePass   = "/api/account/update_password"
	PathCustomDomain = "/api/account/update_custom_domain"
	PathPage         = "/api/edit/page"
	PathPages        = "/api/edit/pages"
	PathCreatePage   = "/api/edit/create_page"
	PathEditPage     = "/api/edit/edit_page"
	PathRenamePage   = "/api/edit/rename_page"
	PathDeletePage   = "/api/edit/delete_page"
	PathFile         = "/api/files/file"
	PathFiles        = "/api/files/files"
	PathUpload       = "/api/files/upload"
	PathRenameFile   = "/api/files/rename"
	PathDeleteFile   = "/api/files/delete"
)

// Renderer turns page markdown into the HTML stored next to it.
type Renderer interface {
	Render(markdown string) (string, error)
}
