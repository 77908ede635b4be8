package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

// Frame types on the worker's stdout stream.
const (
	frameStep   = "step"
	frameResult = "result"
)

// frame is one NDJSON line from worker to parent. Steps stream as they
// are recorded; the result frame is terminal.
type frame struct {
	T      string        `json:"t"`
	Step   *trace.Step   `json:"step,omitempty"`
	Result *trace.Result `json:"result,omitempty"`
}

// workRequest is the single JSON line the parent writes to the worker's
// stdin. Zero budgets mean defaults.
type workRequest struct {
	Code      string `json:"code"`
	MaxSteps  int    `json:"maxSteps,omitempty"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}

// frameWriter emits NDJSON frames, flushing after every line so the
// parent sees each step the moment it is recorded.
type frameWriter struct {
	w *bufio.Writer
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{w: bufio.NewWriter(w)}
}

func (fw *frameWriter) write(f frame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if _, err := fw.w.Write(data); err != nil {
		return err
	}
	if err := fw.w.WriteByte('\n'); err != nil {
		return err
	}
	return fw.w.Flush()
}

// Step implements recorder.Sink.
func (fw *frameWriter) Step(st trace.Step) error {
	return fw.write(frame{T: frameStep, Step: &st})
}

// Result terminates the stream.
func (fw *frameWriter) Result(res trace.Result) error {
	return fw.write(frame{T: frameResult, Result: &res})
}

// readFrame decodes the next NDJSON line. A killed worker leaves a
// truncated final line; that surfaces as a decode error and the caller
// keeps whatever frames arrived before it.
func readFrame(r *bufio.Reader) (frame, error) {
	line, err := r.ReadBytes('\n')
	if err != nil && len(bytes.TrimSpace(line)) == 0 {
		return frame{}, err
	}
	var f frame
	if uerr := sonic.Unmarshal(line, &f); uerr != nil {
		return frame{}, fmt.Errorf("decode frame: %w", uerr)
	}
	return f, nil
}

// RunWorker serves one request on the worker side of the pipe: it reads
// the request line from r, streams step frames to w while the program
// runs, and terminates the stream with a result frame. The result frame
// carries no trace of its own; the parent reassembles it from the
// streamed steps.
func RunWorker(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	line, err := br.ReadBytes('\n')
	if len(bytes.TrimSpace(line)) == 0 {
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		return errors.New("empty request")
	}

	var req workRequest
	if err := sonic.Unmarshal(line, &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	cfg := DefaultConfig()
	if req.MaxSteps > 0 {
		cfg.MaxSteps = req.MaxSteps
	}
	if req.TimeoutMs > 0 {
		cfg.Timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}

	fw := newFrameWriter(w)
	res := NewEngine(cfg).ExecuteStream(ctx, req.Code, fw)
	res.Trace = []trace.Step{}
	return fw.Result(res)
}
