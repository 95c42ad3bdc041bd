// Package dot renders cascades as Graphviz DOT documents.
package dot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Graph is a directed DOT graph built incrementally. It implements
// cascade.GraphSink. The zero value is not usable; call New.
type Graph struct {
	name   string
	format string
	binary string

	order []string
	nodes map[string]node
	edges [][2]string
}

type node struct {
	label string
	fill  string
}

// Option configures a Graph.
type Option func(*Graph)

// WithFormat makes RenderToFile also run Graphviz to produce an image in
// the given output format (pdf, png, svg...).
func WithFormat(format string) Option {
	return func(g *Graph) { g.format = format }
}

// WithBinary overrides the Graphviz executable. Default: "dot" from PATH.
func WithBinary(path string) Option {
	return func(g *Graph) { g.binary = path }
}

// New returns an empty graph called name.
func New(name string, opts ...Option) *Graph {
	g := &Graph{name: name, binary: "dot", nodes: make(map[string]node)}
	for _, o := range opts {
		o(g)
	}
	return g
}

// AddNode declares a node. Declaring the same key again replaces its label
// and color but keeps its original position.
func (g *Graph) AddNode(key, label, fill string) {
	if _, ok := g.nodes[key]; !ok {
		g.order = append(g.order, key)
	}
	g.nodes[key] = node{label: label, fill: fill}
}

// AddEdge adds a directed edge. Duplicate edges are kept, as in Graphviz.
func (g *Graph) AddEdge(from, to string) {
	g.edges = append(g.edges, [2]string{from, to})
}

// String returns the DOT source of the graph.
func (g *Graph) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %s {\n", quoteID(g.name))
	for _, key := range g.order {
		n := g.nodes[key]
		fmt.Fprintf(&sb, "\t%s [label=\"%s\"", quoteID(key), escapeLabel(n.label))
		if n.fill != "" {
			fmt.Fprintf(&sb, " fillcolor=\"%s\" style=filled", escapeLabel(n.fill))
		}
		sb.WriteString("]\n")
	}
	for _, e := range g.edges {
		fmt.Fprintf(&sb, "\t%s -> %s\n", quoteID(e[0]), quoteID(e[1]))
	}
	sb.WriteString("}\n")
	return sb.String()
}

// RenderToFile writes the DOT source to path, creating parent directories.
// With a format configured it then runs Graphviz and returns the image
// path (path + "." + format); otherwise it returns path.
func (g *Graph) RenderToFile(ctx context.Context, path string) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(g.String()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if g.format == "" {
		slog.Debug("dot source written", slog.String("path", path), slog.Int("nodes", len(g.order)))
		return path, nil
	}

	out := path + "." + g.format
	cmd := exec.CommandContext(ctx, g.binary, "-T"+g.format, "-o", out, path)
	if msg, err := cmd.CombinedOutput(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("graphviz %s: %s", g.format, strings.TrimSpace(string(msg)))
		}
		return "", fmt.Errorf("run graphviz: %w", err)
	}
	slog.Info("cascade rendered", slog.String("path", out), slog.Int("nodes", len(g.order)), slog.Int("edges", len(g.edges)))
	return out, nil
}

func quoteID(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

func escapeLabel(s string) string {
	return strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
	).Replace(s)
}
