// Package export reads and writes finished traces in interchange
// formats. The JSON wire contract is authoritative; YAML and TOML are
// produced from the JSON form so field names stay identical across all
// three.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

// Format selects the on-disk encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FromPath derives the format from a file extension, defaulting to JSON.
func FromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	default:
		return JSON
	}
}

// Parse resolves a format name. An empty name means JSON.
func Parse(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// ContentType reports the MIME type served for a format.
func (f Format) ContentType() string {
	switch f {
	case YAML:
		return "application/x-yaml"
	case TOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

// Ext reports the file extension for a format, without the dot.
func (f Format) Ext() string {
	if f == "" {
		return "json"
	}
	return string(f)
}

// Write encodes res to w in the given format.
func Write(w io.Writer, f Format, res *trace.Result) error {
	data, err := sonic.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	switch f {
	case YAML:
		out, err := yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("convert to yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case TOML:
		var m map[string]interface{}
		if err := sonic.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("convert to toml: %w", err)
		}
		return toml.NewEncoder(w).Encode(m)
	default:
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n")
		return err
	}
}

// Read decodes a result from r in the given format.
func Read(r io.Reader, f Format) (*trace.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch f {
	case YAML:
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("convert from yaml: %w", err)
		}
	case TOML:
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("convert from toml: %w", err)
		}
		data, err = sonic.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("convert from toml: %w", err)
		}
	}

	var res trace.Result
	if err := sonic.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &res, nil
}

// Save writes res to path, picking the format from the extension.
func Save(path string, res *trace.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Write(f, FromPath(path), res); err != nil {
		return err
	}
	return f.Close()
}

// Load reads a result from path, picking the format from the extension.
func Load(path string) (*trace.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, FromPath(path))
}
