// Package cli provides the interactive tictac command-line client.
//
// It wires configuration, the credential store, the API pipeline and the
// session reconciler, then runs a REPL. On start the stored session is
// validated once; afterwards the navigation guard moves the current view
// between the login and game screens whenever the session changes.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
