// Package catalog serves the built-in example programs.
//
// The catalog ships inside the binary: examples.yaml is embedded at
// build time and parsed once on startup. Examples are what a first-time
// visitor runs before writing code of their own, so each entry is a
// complete program exercising a slice of the traced language.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"
)

//go:embed examples.yaml
var examplesYAML []byte

// Example is a ready-to-run program shown in the picker.
type Example struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Code        string   `yaml:"code" json:"code"`
}

// Catalog holds the parsed examples, in file order.
type Catalog struct {
	examples []Example
	byID     map[string]int
}

// Load parses the embedded catalog. Malformed entries fail startup
// rather than surfacing as broken picker entries later.
func Load() (*Catalog, error) {
	var doc struct {
		Examples []Example `yaml:"examples"`
	}
	if err := yaml.Unmarshal(examplesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse example catalog: %w", err)
	}

	c := &Catalog{
		examples: doc.Examples,
		byID:     make(map[string]int, len(doc.Examples)),
	}
	for i, ex := range doc.Examples {
		if ex.ID == "" {
			return nil, fmt.Errorf("example %d has no id", i)
		}
		if ex.Code == "" {
			return nil, fmt.Errorf("example %q has no code", ex.ID)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate example id %q", ex.ID)
		}
		c.byID[ex.ID] = i
	}
	return c, nil
}

// All returns every example in catalog order. The slice is shared;
// callers must not mutate it.
func (c *Catalog) All() []Example {
	return c.examples
}

// Get returns one example by id.
func (c *Catalog) Get(id string) (Example, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Example{}, false
	}
	return c.examples[i], true
}

// ByTag returns the examples carrying the tag, in catalog order.
func (c *Catalog) ByTag(tag string) []Example {
	var out []Example
	for _, ex := range c.examples {
		for _, t := range ex.Tags {
			if t == tag {
				out = append(out, ex)
				break
			}
		}
	}
	return out
}

// Len reports the number of examples.
func (c *Catalog) Len() int { return len(c.examples) }
