package core

import "fmt"

// EventKind identifies a bus event. The set is closed: every kind has exactly
// one payload type below.
type EventKind int

const (
	KindAuthChanged EventKind = iota + 1
	KindEscapePressed
	KindBodyClicked
	KindSaveShortcut
	KindPageSaved
	KindDirtyChanged
	KindUploadProgress

	kindSentinel
)

var kindNames = map[EventKind]string{
	KindAuthChanged:    "authenticationStateChanged",
	KindEscapePressed:  "escapeKeyPressed",
	KindBodyClicked:    "clickBody",
	KindSaveShortcut:   "ctrl+s",
	KindPageSaved:      "pageSaved",
	KindDirtyChanged:   "unsavedChanges",
	KindUploadProgress: "uploadProgress",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k EventKind) Valid() bool {
	return k > 0 && k < kindSentinel
}

// Event is implemented only by the payload types of this package.
type Event interface {
	Kind() EventKind
	String() string
	sealed()
}

// AuthChanged is emitted on every authentication state transition.
type AuthChanged struct {
	Authenticated bool
	User          *User
}

func (AuthChanged) Kind() EventKind { return KindAuthChanged }
func (e AuthChanged) String() string {
	if e.User != nil {
		return fmt.Sprintf("%s(%t, %s)", e.Kind(), e.Authenticated, e.User.Domain)
	}
	return fmt.Sprintf("%s(%t)", e.Kind(), e.Authenticated)
}
func (AuthChanged) sealed() {}

// EscapePressed asks open dialogs and menus to close.
type EscapePressed struct{}

func (EscapePressed) Kind() EventKind  { return KindEscapePressed }
func (e EscapePressed) String() string { return e.Kind().String() }
func (EscapePressed) sealed()          {}

// BodyClicked cancels menus; Target names what was clicked, if known.
type BodyClicked struct {
	Target string
}

func (BodyClicked) Kind() EventKind { return KindBodyClicked }
func (e BodyClicked) String() string {
	return fmt.Sprintf("%s(%s)", e.Kind(), e.Target)
}
func (BodyClicked) sealed() {}

// SaveShortcut is the save key chord (ctrl+s / cmd+s) or any host
// equivalent, such as a local file being written.
type SaveShortcut struct{}

func (SaveShortcut) Kind() EventKind  { return KindSaveShortcut }
func (e SaveShortcut) String() string { return e.Kind().String() }
func (SaveShortcut) sealed()          {}

// PageSaved is emitted after a page was pushed to the backend.
type PageSaved struct {
	Name string
}

func (PageSaved) Kind() EventKind { return KindPageSaved }
func (e PageSaved) String() string {
	return fmt.Sprintf("%s(%s)", e.Kind(), e.Name)
}
func (PageSaved) sealed() {}

// DirtyChanged is emitted when a page gains or loses unsaved changes.
type DirtyChanged struct {
	Name  string
	Dirty bool
}

func (DirtyChanged) Kind() EventKind { return KindDirtyChanged }
func (e DirtyChanged) String() string {
	return fmt.Sprintf("%s(%s, %t)", e.Kind(), e.Name, e.Dirty)
}
func (DirtyChanged) sealed() {}

// UploadProgress reports the percentage of an upload body sent so far.
type UploadProgress struct {
	Name    string
	Percent float64
}

func (UploadProgress) Kind() EventKind { return KindUploadProgress }
func (e UploadProgress) String() string {
	return fmt.Sprintf("%s(%s, %.1f%%)", e.Kind(), e.Name, e.Percent)
}
func (UploadProgress) sealed() {}
