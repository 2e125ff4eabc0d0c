// Package seed loads the bundled starter content.
//
// A seed document is YAML with one list per collection (ideas, petitions,
// polls, projects). Before use it is validated twice: structurally against
// the CUE schema in schema.cue, then for identity and vote consistency by
// content.Collections.Check.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/communityvoice/internal/content"
)

//go:embed seed.yaml
var bundled []byte

// ErrNoSeed is returned by None.
var ErrNoSeed = errors.New("seed: no seed document configured")

// Source provides the seed collections. It is consulted only when durable
// storage is empty.
type Source interface {
	Fetch(ctx context.Context) (content.Collections, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (content.Collections, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) (content.Collections, error) {
	return f(ctx)
}

// None is a Source that always fails with ErrNoSeed.
var None Source = SourceFunc(func(context.Context) (content.Collections, error) {
	return content.Collections{}, ErrNoSeed
})

// Embedded returns the document compiled into the binary.
func Embedded() Source {
	return SourceFunc(func(ctx context.Context) (content.Collections, error) {
		if err := ctx.Err(); err != nil {
			return content.Collections{}, err
		}
		return Parse(bundled)
	})
}

// File returns a Source that reads and parses path on every fetch.
func File(path string) Source {
	return SourceFunc(func(ctx context.Context) (content.Collections, error) {
		if err := ctx.Err(); err != nil {
			return content.Collections{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return content.Collections{}, fmt.Errorf("read seed: %w", err)
		}
		return Parse(data)
	})
}

// Bundled returns a copy of the embedded seed document.
func Bundled() []byte {
	return append([]byte(nil), bundled...)
}

// Parse decodes and validates a YAML seed document.
func Parse(data []byte) (content.Collections, error) {
	doc, err := ToJSON(data)
	if err != nil {
		return content.Collections{}, err
	}
	if err := Validate(doc); err != nil {
		return content.Collections{}, err
	}
	c, err := content.Decode(doc)
	if err != nil {
		return content.Collections{}, err
	}
	if err := c.Check(); err != nil {
		return content.Collections{}, fmt.Errorf("seed: %w", err)
	}
	return c, nil
}

// ToJSON converts a YAML seed document to its JSON form.
func ToJSON(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert seed to json: %w", err)
	}
	return out, nil
}
