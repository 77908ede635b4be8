// Package main is the one-shot trace worker.
//
// The server spawns one tracehost process per run. The process reads a
// single JSON request line from stdin, executes the program under its
// budgets, streams each recorded step to stdout as an NDJSON frame, and
// terminates the stream with a result frame before exiting.
//
// Keeping each run in its own process means a wedged or crashed run can
// always be killed from outside without taking the server with it, and
// the steps streamed before the kill still form a usable partial trace.
//
// Usage:
//
//	echo '{"code":"print(1+1)"}' | ./tracehost
//
// Signals:
//   - SIGINT, SIGTERM: interrupt the run; the partial result is still written
package main
