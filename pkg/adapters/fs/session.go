// Package fs keeps the client's local state on disk: the session file that
// survives between CLI runs.
package fs

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/mdninja/pkg/core"
)

// DefaultSessionName is the file name used under the user config directory.
const DefaultSessionName = "session.yaml"

// sessionData is the on-disk layout of the session file.
type sessionData struct {
	BaseURL       string         `yaml:"base_url,omitempty"`
	Authenticated bool           `yaml:"authenticated"`
	Cookies       []cookieRecord `yaml:"cookies,omitempty"`
}

type cookieRecord struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// SessionFile persists the authentication hint and the session cookies of
// one backend. It implements core.SessionStore and remote.CookieStore.
//
// Cookies saved for another base URL are ignored on load and replaced on the
// next save.
type SessionFile struct {
	path    string
	baseURL string
	mu      sync.Mutex
}

// NewSessionFile returns a store backed by path. The file and its directory
// are created on the first save.
func NewSessionFile(path, baseURL string) *SessionFile {
	return &SessionFile{path: path, baseURL: baseURL}
}

// DefaultSessionPath returns <user config dir>/mdninja/session.yaml.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "mdninja", DefaultSessionName), nil
}

// Path returns the file location.
func (f *SessionFile) Path() string {
	return f.path
}

// LoadHint implements core.SessionStore. A missing file is an unauthenticated
// hint, not an error.
func (f *SessionFile) LoadHint() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return false, err
	}
	return data.Authenticated && data.BaseURL == f.baseURL, nil
}

// SaveHint implements core.SessionStore.
func (f *SessionFile) SaveHint(authenticated bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	f.rebase(&data)
	data.Authenticated = authenticated
	return f.write(data)
}

// LoadCookies implements remote.CookieStore.
func (f *SessionFile) LoadCookies() ([]*http.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return nil, err
	}
	if data.BaseURL != f.baseURL {
		return nil, nil
	}
	cookies := make([]*http.Cookie, 0, len(data.Cookies))
	for _, c := range data.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

// SaveCookies implements remote.CookieStore.
func (f *SessionFile) SaveCookies(cookies []*http.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	f.rebase(&data)
	data.Cookies = data.Cookies[:0]
	for _, c := range cookies {
		data.Cookies = append(data.Cookies, cookieRecord{Name: c.Name, Value: c.Value})
	}
	return f.write(data)
}

// Clear removes the session file.
func (f *SessionFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (f *SessionFile) rebase(data *sessionData) {
	if data.BaseURL != f.baseURL {
		*data = sessionData{BaseURL: f.baseURL}
	}
}

func (f *SessionFile) read() (sessionData, error) {
	var data sessionData
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("failed to read session file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to parse session file %s: %w", f.path, err)
	}
	return data, nil
}

func (f *SessionFile) write(data sessionData) error {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	return WriteFileAtomic(f.path, raw, 0600)
}

var _ core.SessionStore = (*SessionFile)(nil)
