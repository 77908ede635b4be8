// Package ws provides WebSocket handling for live trace streaming.
//
// This package implements WebSocket communication for running programs
// and watching their traces arrive step by step, instead of waiting for
// the whole trace in one HTTP response.
//
// Features:
//   - Step-by-step trace streaming as the sandbox records them
//   - Cached runs replayed through the same message shape
//   - Automatic connection upgrade from HTTP
//   - Context-based cancellation
//
// Message Types (Client → Server):
//   - run: Execute code and stream its trace
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection established
//   - run_start: Execution accepted
//   - step: One trace step
//   - result: Final run outcome (stdout, flags, run id)
//   - pong: Keep-alive reply
//   - error: Error occurred
//
// Example Usage:
//
//	handler := ws.NewHandler(runService, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
