// Package core holds the domain of the editor client: the records owned by
// the backend, the typed event bus and the Service that talks to the API.
package core

// User is the account record returned by the backend.
// Sensitive fields (password hash, salt) are never sent to the client.
type User struct {
	Name           string `json:"name"`
	Domain         string `json:"domain"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	ExternalDomain string `json:"external_domain,omitempty"`
}

// Page is a named markdown document with its derived HTML.
// The backend owns it; the client only holds ephemeral copies.
type Page struct {
	Name     string `json:"name"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html,omitempty"`
}

// File is an uploaded asset (resume, image, ...). Only the name is
// guaranteed; size and hash are informational.
type File struct {
	Name string `json:"name"`
	Size int    `json:"size,omitempty"`
	Hash string `json:"hash,omitempty"`
}

// Response is the common envelope of every API reply.
type Response struct {
	Result  string `json:"result,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Result values the backend uses in Response.Result.
const (
	ResultOK              = "ok"
	ResultDomainAvailable = "domain-available"
	ResultDuplicate       = "duplicate"
	ResultInvalidArgs     = "invalid-args"
	ResultError           = "error"
)

// SignupParams is the payload of a signup request.
type SignupParams struct {
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// renameParams is shared by page and file renames.
type renameParams struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

type nameParams struct {
	Name string `json:"name"`
}
