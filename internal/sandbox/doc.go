/*
Package sandbox executes untrusted programs under strict resource budgets
and produces the replayable trace.

# Overview

A run flows through three cooperating pieces:

 1. Engine: the in-process parse/interpret/record pipeline
 2. Governor: step, wall-clock, and stdout budgets with interrupt authority
 3. Host: a one-shot worker subprocess around the Engine, so forced
    termination cannot be evaded and a crash cannot corrupt the server

The worker streams each recorded step over its stdout pipe as NDJSON the
moment it happens. When the parent has to kill a runaway worker, the steps
already streamed form the partial trace the result still carries.

# Security Model

Traced code cannot:
  - Outlive its wall-clock budget (the parent kills the worker process)
  - Grow the trace past the step budget
  - Flood the result with unbounded stdout
  - Touch the filesystem or network: the interpreter exposes no such API

# Usage Example

	host := sandbox.NewHost(sandbox.DefaultConfig(), log)
	result := host.Execute(ctx, code)

Pool bounds how many workers run concurrently:

	pool := sandbox.NewPool(host, 4)
	result, err := pool.Execute(ctx, code)
*/
package sandbox
