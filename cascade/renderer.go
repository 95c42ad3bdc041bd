package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// Renderer walks a forest and emits it into a GraphSink.
type Renderer struct {
	colors map[int64]string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithColors sets fill colors by tweet ID. Nodes without an entry get no fill.
func WithColors(colors map[int64]string) RendererOption {
	return func(r *Renderer) { r.colors = colors }
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render registers every node and parent→child edge of forest with sink and
// renders the sink to path. Each node is emitted once even if it is reached
// more than once, across all roots.
func (r *Renderer) Render(ctx context.Context, forest *Forest, sink GraphSink, path string) (string, error) {
	ctx, span := tracer.Start(ctx, "cascade.Render", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	emitted := mapset.NewThreadUnsafeSet[int64]()
	for _, root := range forest.Roots() {
		pending := []*Node{root}
		for len(pending) > 0 {
			node := pending[0]
			pending = pending[1:]
			if !emitted.Add(node.ID) {
				continue
			}

			key := nodeKey(node.ID)
			sink.AddNode(key, node.Label(), r.colors[node.ID])
			for _, child := range node.Children {
				sink.AddEdge(key, nodeKey(child.ID))
				if !emitted.Contains(child.ID) {
					pending = append(pending, child)
				}
			}
		}
	}

	span.SetAttributes(attribute.Int("nodes", emitted.Cardinality()))
	artifact, err := sink.RenderToFile(ctx, path)
	if err != nil {
		return "", failSpan(span, fmt.Errorf("render %s: %w", path, err))
	}
	slog.Debug("cascade: rendered", slog.String("artifact", artifact), slog.Int("nodes", emitted.Cardinality()))
	return artifact, nil
}

// AfterRoot returns a Builder hook that renders the forest into a fresh sink
// after every root, overwriting path each time.
func (r *Renderer) AfterRoot(newSink func() GraphSink, path string) func(ctx context.Context, f *Forest) error {
	return func(ctx context.Context, f *Forest) error {
		_, err := r.Render(ctx, f, newSink(), path)
		return err
	}
}

func nodeKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// LoadColors reads a YAML mapping of tweet ID to fill color, e.g.
//
//	"1265889240300257280": lightblue
func LoadColors(path string) (map[int64]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read colors %s: %w", path, err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse colors %s: %w", path, err)
	}
	colors := make(map[int64]string, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("colors %s: invalid tweet id %q: %w", path, k, err)
		}
		colors[id] = v
	}
	return colors, nil
}
