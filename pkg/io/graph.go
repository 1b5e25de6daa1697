package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/alchemytree/pkg/layout"
)

// WriteGraph encodes a laid-out graph as indented JSON and writes it to w.
// The output can be re-imported with [ReadGraph].
func WriteGraph(g *layout.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGraph writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteGraph] for file-based output.
func ExportGraph(g *layout.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from r.
//
// Every level entry must reference a node or edge present in the document;
// ReadGraph reports the first dangling reference. ReadGraph does not close r.
func ReadGraph(r io.Reader) (*layout.Graph, error) {
	var g layout.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for _, lvl := range g.Levels {
		for _, id := range lvl.NodeIDs {
			if _, ok := g.Node(id); !ok {
				return nil, fmt.Errorf("level %d: unknown node %s", lvl.Depth, id)
			}
		}
		for _, id := range lvl.EdgeIDs {
			if _, ok := g.Edge(id); !ok {
				return nil, fmt.Errorf("level %d: unknown edge %s", lvl.Depth, id)
			}
		}
	}
	return &g, nil
}

// ImportGraph reads a JSON graph file at path.
func ImportGraph(path string) (*layout.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadGraph(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
