package fakeapi

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/validate"
)

func withDomain(ctx context.Context, domain string) context.Context {
	return context.WithValue(ctx, ctxKey{}, domain)
}

// current returns the account of the request's session. Callers hold s.mu.
func (s *Server) current(r *http.Request) *account {
	domain, _ := r.Context().Value(ctxKey{}).(string)
	return s.accounts[domain]
}

// --- auth ---

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Domain   string `json:"domain"`
		Password string `json:"password"`
	}
	if err := parseArgs(r, &args); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}

	s.mu.Lock()
	a, exists := s.accounts[args.Domain]
	s.mu.Unlock()
	if !exists || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(args.Password)) != nil {
		fail(w, http.StatusForbidden, "invalid-credentials")
		return
	}

	s.openSession(w, args.Domain)
	ok(w)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	ok(w)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	domain, authenticated := s.sessionDomain(r)
	if !authenticated {
		http.Error(w, "Not authorized", http.StatusForbidden)
		return
	}
	s.mu.Lock()
	user := s.accounts[domain].user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"result": core.ResultOK, "user": user})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var args core.SignupParams
	if err := parseArgs(r, &args); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	if err := validate.Signup(args.Name, args.Domain, args.Email, args.Password); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}

	s.mu.Lock()
	_, taken := s.accounts[args.Domain]
	s.mu.Unlock()
	if taken {
		fail(w, http.StatusBadRequest, core.ResultDuplicate)
		return
	}

	user := core.User{Name: args.Name, Domain: args.Domain, Email: args.Email}
	if err := s.AddUser(user, args.Password); err != nil {
		fail(w, http.StatusInternalServerError, core.ResultError)
		return
	}
	s.openSession(w, args.Domain)
	ok(w)
}

func (s *Server) checkDomain(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Domain string `json:"domain"`
	}
	if err := parseArgs(r, &args); err != nil || validate.Domain(args.Domain) != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	_, taken := s.accounts[args.Domain]
	s.mu.Unlock()
	if taken {
		writeJSON(w, http.StatusOK, core.Response{Result: "domain-unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, core.Response{Result: core.ResultDomainAvailable})
}

// --- account ---

func (s *Server) updateEmail(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Email string `json:"email"`
	}
	if err := parseArgs(r, &args); err != nil || validate.Email(args.Email) != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	s.current(r).user.Email = args.Email
	s.mu.Unlock()
	ok(w)
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Password string `json:"password"`
	}
	if err := parseArgs(r, &args); err != nil || len(args.Password) < validate.MinPasswordLength {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(args.Password), bcrypt.MinCost)
	if err != nil {
		fail(w, http.StatusInternalServerError, core.ResultError)
		return
	}
	s.mu.Lock()
	s.current(r).passwordHash = hash
	s.mu.Unlock()
	ok(w)
}

func (s *Server) updateCustomDomain(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Domain string `json:"domain"`
	}
	if err := parseArgs(r, &args); err != nil || args.Domain == "" {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.current(r)
	if owner, taken := s.external[args.Domain]; taken && owner != a.user.Domain {
		fail(w, http.StatusBadRequest, core.ResultDuplicate)
		return
	}
	if a.user.ExternalDomain != "" {
		delete(s.external, a.user.ExternalDomain)
	}
	s.external[args.Domain] = a.user.Domain
	a.user.ExternalDomain = args.Domain
	ok(w)
}

// --- pages ---

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Name string `json:"name"`
	}
	if err := parseArgs(r, &args); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	p, exists := s.current(r).pages[args.Name]
	s.mu.Unlock()
	if !exists {
		fail(w, http.StatusNotFound, core.ResultInvalidArgs)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) pages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := sortedPages(s.current(r).pages)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createPage(w http.ResponseWriter, r *http.Request) {
	var p core.Page
	if err := parseArgs(r, &p); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	if p.Name == "" {
		p.Name = "new_page.md"
	}
	if p.Markdown == "" {
		p.Markdown = "## Default new page\nThis is an example page."
	}
	if p.HTML == "" {
		p.HTML = "<h1>Default new page</h1><p>This is an example page.</p>"
	}
	if !validName(p.Name) {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.current(r)
	if _, exists := a.pages[p.Name]; exists {
		fail(w, http.StatusBadRequest, core.ResultDuplicate)
		return
	}
	a.pages[p.Name] = p
	writeJSON(w, http.StatusOK, core.Page{Name: p.Name, Markdown: p.Markdown})
}

func (s *Server) editPage(w http.ResponseWriter, r *http.Request) {
	var p core.Page
	if err := parseArgs(r, &p); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.current(r)
	if _, exists := a.pages[p.Name]; !exists {
		fail(w, http.StatusNotFound, core.ResultInvalidArgs)
		return
	}
	a.pages[p.Name] = p
	ok(w)
}

func (s *Server) renamePage(w http.ResponseWriter, r *http.Request) {
	var args struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := parseArgs(r, &args); err != nil || !validName(args.NewName) {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.current(r)
	p, exists := a.pages[args.OldName]
	if !exists {
		fail(w, http.StatusNotFound, core.ResultInvalidArgs)
		return
	}
	if _, clash := a.pages[args.NewName]; clash {
		fail(w, http.StatusBadRequest, core.ResultDuplicate)
		return
	}
	delete(a.pages, args.OldName)
	p.Name = args.NewName
	a.pages[p.Name] = p
	ok(w)
}

func (s *Server) deletePage(w http.ResponseWriter, r *http.Request) {
	var p core.Page
	if err := parseArgs(r, &p); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.current(r)
	if _, exists := a.pages[p.Name]; !exists {
		fail(w, http.StatusNotFound, core.ResultInvalidArgs)
		return
	}
	delete(a.pages, p.Name)
	ok(w)
}

// --- files ---

func (s *Server) file(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Name string `json:"name"`
	}
	if err := parseArgs(r, &args); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	f, exists := s.current(r).files[args.Name]
	s.mu.Unlock()
	if !exists {
		fail(w, http.StatusNotFound, core.ResultInvalidArgs)
		return
	}
	writeJSON(w, http.StatusOK, f.record)
}

func (s *Server) files(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a := s.current(r)
	list := make([]core.File, 0, len(a.files))
	for _, f := range a.files {
		list = append(list, core.File{Name: f.record.Name})
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, http.StatusBadRequest, core.ResultError)
		return
	}
	if len(data) > MaxUploadSize {
		fail(w, http.StatusRequestEntityTooLarge, core.ResultError)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	name = validate.SafeName(name)
	if !validName(name) {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}

	s.mu.Lock()
	s.current(r).files[name] = storedFile{
		record: core.File{Name: name, Size: len(data), Hash: fmt.Sprintf("%x", md5.Sum(data))},
		data:   data,
	}
	s.mu.Unlock()
	ok(w)
}

func (s *Server) renameFile(w http.ResponseWriter, r *http.Request) {
	var args struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := parseArgs(r, &args); err != nil || !validName(args.NewName) {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.current(r)
	f, exists := a.files[args.OldName]
	if !exists {
		fail(w, http.StatusNotFound, core.ResultInvalidArgs)
		return
	}
	delete(a.files, args.OldName)
	f.record.Name = args.NewName
	a.files[args.NewName] = f
	ok(w)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Name string `json:"name"`
	}
	if err := parseArgs(r, &args); err != nil {
		fail(w, http.StatusBadRequest, core.ResultInvalidArgs)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.current(r)
	if _, exists := a.files[args.Name]; !exists {
		fail(w, http.StatusNotFound, core.ResultInvalidArgs)
		return
	}
	delete(a.files, args.Name)
	ok(w)
}
