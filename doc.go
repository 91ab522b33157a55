// Package mdninja is the Composition Root of the mdninja client.
//
// It connects the core (session state, the typed event bus and the API
// service) with the infrastructure adapters (HTTP transport, session file,
// local mirror) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// mdninja hosts personal websites written in markdown. The backend owns
// every page and file; a client holds ephemeral copies, edits them and
// pushes them back with explicit saves. Any Go host (the CLI, a TUI, a test)
// constructs the service explicitly and passes it around; there is no
// global instance.
//
// Features:
//
//   - **Explicit Lifecycle**: `New` -> `Start` -> operations -> `Close`.
//   - **Typed Events**: a closed set of events (auth changes, the save
//     shortcut, saves, unsaved-change and upload progress) on a synchronous bus.
//   - **Editor Workflow**: unsaved-change tracking, save-before-navigate and a
//     single outstanding mutation at a time.
//   - **Local Mirror**: pull pages into a directory, push edits back, or watch
//     it and save every write.
//   - **Persistent Session**: cookies and the sign-in hint survive between runs.
//
// Usage:
//
//	svc, err := mdninja.Open(ctx, "https://mdninja.example",
//		mdninja.WithLogger(logger),
//	)
//	defer svc.Close()
//
//	ok, err := svc.Login(ctx, "mydomain", "secret")
//	ed := mdninja.NewEditor(ctx, svc)
//	err = ed.Open(ctx, "index.md")
package mdninja
