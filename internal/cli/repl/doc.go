// Package repl provides the interactive mode of rmcloud-cli.
//
//   - repl.go: read-eval-print loop and line splitting
//   - completer.go: command suggestions ("docs ?")
//   - history.go: command history, persisted across runs
//
// The loop does not know the command set; it hands each line's arguments
// to an Executor.
package repl
