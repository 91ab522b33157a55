// Package fakeapi is an in-memory stand-in for the site backend. It speaks
// the same JSON-over-POST contract and is used by tests and local
// experiments; it is not a production server.
package fakeapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/validate"
)

// SessionCookie is the name of the authentication cookie.
const SessionCookie = "authentication"

// MaxUploadSize mirrors the backend's 10 MiB upload limit.
const MaxUploadSize = 10 << 20

type account struct {
	user         core.User
	passwordHash []byte
	pages        map[string]core.Page
	files        map[string]storedFile
}

type storedFile struct {
	record core.File
	data   []byte
}

// Server is the fake backend.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account // by domain
	sessions map[string]string   // token -> domain
	external map[string]string   // external domain -> internal domain
	calls    map[string]int
}

// New creates an empty backend.
func New() *Server {
	return &Server{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		external: make(map[string]string),
		calls:    make(map[string]int),
	}
}

// Start serves the backend on a local httptest server. The caller closes it.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

// Handler returns the router of every API path.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countCalls)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
		r.Post("/check", s.check)
		r.Post("/signup", s.signup)
		r.Post("/check_domain", s.checkDomain)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Route("/api/account", func(r chi.Router) {
			r.Post("/update_email", s.updateEmail)
			r.Post("/update_password", s.updatePassword)
			r.Post("/update_custom_domain", s.updateCustomDomain)
		})
		r.Route("/api/edit", func(r chi.Router) {
			r.Post("/page", s.page)
			r.Post("/pages", s.pages)
			r.Post("/create_page", s.createPage)
			r.Post("/edit_page", s.editPage)
			r.Post("/rename_page", s.renamePage)
			r.Post("/delete_page", s.deletePage)
		})
		r.Route("/api/files", func(r chi.Router) {
			r.Post("/file", s.file)
			r.Post("/files", s.files)
			r.Post("/upload", s.upload)
			r.Post("/rename", s.renameFile)
			r.Post("/delete", s.deleteFile)
		})
	})
	return r
}

// AddUser seeds an account.
func (s *Server) AddUser(user core.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Domain] = &account{
		user:         user,
		passwordHash: hash,
		pages:        make(map[string]core.Page),
		files:        make(map[string]storedFile),
	}
	return nil
}

// AddPage seeds a page on domain.
func (s *Server) AddPage(domain string, p core.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[domain]; ok {
		a.pages[p.Name] = p
	}
}

// Page returns the stored page, for assertions.
func (s *Server) Page(domain, name string) (core.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[domain]
	if !ok {
		return core.Page{}, false
	}
	p, ok := a.pages[name]
	return p, ok
}

// FileData returns the stored bytes of an uploaded file, for assertions.
func (s *Server) FileData(domain, name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[domain]
	if !ok {
		return nil, false
	}
	f, ok := a.files[name]
	return f.data, ok
}

// Calls returns how many times path was hit.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domain, ok := s.sessionDomain(r)
		if !ok {
			http.Error(w, "Not authorized", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(withDomain(r.Context(), domain)))
	})
}

func (s *Server) sessionDomain(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	domain, ok := s.sessions[c.Value]
	if !ok {
		return "", false
	}
	_, exists := s.accounts[domain]
	return domain, exists
}

func (s *Server) openSession(w http.ResponseWriter, domain string) {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	token := hex.EncodeToString(b)

	s.mu.Lock()
	s.sessions[token] = domain
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
}

func parseArgs(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, core.Response{Result: core.ResultOK})
}

func fail(w http.ResponseWriter, status int, result string) {
	writeJSON(w, status, core.Response{Error: true, Result: result})
}

func sortedPages(m map[string]core.Page) []core.Page {
	out := make([]core.Page, 0, len(m))
	for _, p := range m {
		out = append(out, core.Page{Name: p.Name, Markdown: p.Markdown})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func validName(name string) bool {
	return validate.Filename(name) == nil
}
