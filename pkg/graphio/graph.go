package graphio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal converts a graph to indented JSON bytes.
func Marshal(g *nodegraph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a graph.
func Unmarshal(data []byte) (*nodegraph.Graph, error) {
	return readFrom(bytes.NewReader(data))
}

// Write writes a graph as JSON to w.
func Write(g *nodegraph.Graph, w io.Writer) error {
	return writeTo(g, w)
}

// WriteFile writes a graph to a JSON file with 0644 permissions.
func WriteFile(g *nodegraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeTo(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a JSON graph from r.
func Read(r io.Reader) (*nodegraph.Graph, error) {
	return readFrom(r)
}

// ReadFile reads a JSON graph file.
func ReadFile(path string) (*nodegraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := readFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(g *nodegraph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*nodegraph.Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode graph")
	}
	return ToGraph(data)
}
