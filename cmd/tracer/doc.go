// Package main is the tracer command line client.
//
// It submits programs to a running trace service and saves each recorded
// trace next to your work, in JSON, YAML, or TOML.
//
// Usage:
//
//	# Trace one inline program
//	tracer -code 'print(1+1)'
//
//	# Trace every matching file, saving YAML traces to ./traces
//	tracer -format yaml -out traces 'snippets/**/*.py'
//
//	# Point at a non-default server
//	tracer -server http://trace.internal:8000 examples/fib.py
//
// File arguments are glob patterns; ** matches across directories.
package main
