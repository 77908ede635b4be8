package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

func sampleResult() *trace.Result {
	seven := 7.0
	one := 1.0
	locals := map[string]trace.Value{
		"n":    {Repr: "7", Type: "int", Numeric: &seven},
		"nums": {Repr: "[1, 2]", Type: "list", Ref: "1"},
		"tags": {Repr: "{'a': 1}", Type: "dict", Ref: "2"},
	}
	heap := map[string]trace.Object{
		"1": {
			Type:   "list",
			Kind:   trace.KindSequence,
			Repr:   "[1, 2]",
			Length: trace.IntPtr(2),
			Items: []trace.Value{
				trace.ScalarNum("1", "int", 1),
				trace.ScalarNum("2", "int", 2),
			},
		},
		"2": {
			Type:   "dict",
			Kind:   trace.KindMapping,
			Repr:   "{'a': 1}",
			Length: trace.IntPtr(1),
			Entries: []trace.Entry{
				{
					Key:   &trace.Value{Repr: "'a'", Type: "str"},
					Value: &trace.Value{Repr: "1", Type: "int", Numeric: &one},
				},
			},
		},
	}
	stack := []trace.Frame{{Function: "<module>", Line: 2, Locals: locals}}
	ret := trace.Scalar("None", "NoneType")
	return &trace.Result{
		Trace: []trace.Step{
			{
				Event:   "line",
				Line:    2,
				Locals:  locals,
				Globals: locals,
				Stack:   stack,
				Heap:    heap,
			},
			{
				Event:   "return",
				Line:    2,
				Locals:  locals,
				Globals: locals,
				Stack:   stack,
				Return:  &ret,
				Heap:    heap,
			},
			{
				Event:     "exception",
				Line:      2,
				Locals:    locals,
				Globals:   locals,
				Stack:     stack,
				Exception: &trace.Exception{Type: "ValueError", Value: "boom"},
				Heap:      heap,
			},
		},
		Stdout: "done\n",
		Error:  "ValueError: boom",
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{JSON, YAML, TOML} {
		t.Run(string(f), func(t *testing.T) {
			res := sampleResult()

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, f, res))

			got, err := Read(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, res, got)
		})
	}
}

// Call steps open with empty scopes; JSON must keep them as {} rather
// than dropping the keys.
func TestRoundTripEmptyScopesJSON(t *testing.T) {
	res := &trace.Result{
		Trace: []trace.Step{{
			Event:   "call",
			Line:    1,
			Locals:  map[string]trace.Value{},
			Globals: map[string]trace.Value{},
			Stack:   []trace.Frame{{Function: "<module>", Line: 1, Locals: map[string]trace.Value{}}},
			Heap:    map[string]trace.Object{},
		}},
		Stdout: "",
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, res))
	assert.Contains(t, buf.String(), `"locals": {}`)

	got, err := Read(&buf, JSON)
	require.NoError(t, err)
	assert.Equal(t, res, got)
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleResult()))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	var doc map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &doc))

	// field names are the public contract
	for _, key := range []string{"trace", "truncated", "timedOut", "stdout", "error"} {
		assert.Contains(t, doc, key)
	}

	steps := doc["trace"].([]interface{})
	require.Len(t, steps, 3)
	first := steps[0].(map[string]interface{})
	for _, key := range []string{"event", "line", "locals", "globals", "stack", "heap"} {
		assert.Contains(t, first, key)
	}
	assert.NotContains(t, first, "return_value")
	assert.NotContains(t, first, "exception")

	last := steps[2].(map[string]interface{})
	assert.Contains(t, last, "exception")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"", JSON},
		{"json", JSON},
		{"JSON", JSON},
		{"yaml", YAML},
		{"yml", YAML},
		{"YAML", YAML},
		{"toml", TOML},
	}
	for _, tt := range tests {
		f, err := Parse(tt.name)
		require.NoError(t, err, "Parse(%q)", tt.name)
		assert.Equal(t, tt.want, f, "Parse(%q)", tt.name)
	}

	_, err := Parse("xml")
	assert.EqualError(t, err, `unknown export format "xml"`)
}

func TestFromPath(t *testing.T) {
	assert.Equal(t, YAML, FromPath("/tmp/run.yaml"))
	assert.Equal(t, YAML, FromPath("run.yml"))
	assert.Equal(t, YAML, FromPath("RUN.YAML"))
	assert.Equal(t, TOML, FromPath("run.toml"))
	assert.Equal(t, JSON, FromPath("run.json"))
	assert.Equal(t, JSON, FromPath("run.txt"))
	assert.Equal(t, JSON, FromPath("run"))
}

func TestContentTypeAndExt(t *testing.T) {
	assert.Equal(t, "application/json", JSON.ContentType())
	assert.Equal(t, "application/x-yaml", YAML.ContentType())
	assert.Equal(t, "application/toml", TOML.ContentType())

	assert.Equal(t, "json", JSON.Ext())
	assert.Equal(t, "yaml", YAML.Ext())
	assert.Equal(t, "toml", TOML.Ext())
	assert.Equal(t, "json", Format("").Ext())
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()

	for _, name := range []string{"run.json", "run.yaml", "run.toml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, res))

		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, res, got, name)
	}
}

func TestReadBadInput(t *testing.T) {
	_, err := Read(strings.NewReader("{nope"), JSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode result")

	_, err = Read(strings.NewReader("= broken"), TOML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "convert from toml")
}
