package cascade

import (
	"context"
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Builder expands root tweets into a forest of retweets, breadth-first.
type Builder struct {
	src       RetweetSource
	maxDepth  int
	afterRoot func(ctx context.Context, f *Forest) error
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithMaxDepth stops expansion after depth levels below each root.
// Zero, the default, expands until no unseen retweets remain.
func WithMaxDepth(depth int) BuilderOption {
	return func(b *Builder) { b.maxDepth = depth }
}

// WithAfterRoot registers a hook run after each root's traversal completes,
// with the forest as built so far. A hook error aborts Build.
func WithAfterRoot(fn func(ctx context.Context, f *Forest) error) BuilderOption {
	return func(b *Builder) { b.afterRoot = fn }
}

// NewBuilder creates a Builder reading retweets from src.
func NewBuilder(src RetweetSource, opts ...BuilderOption) *Builder {
	b := &Builder{src: src}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build traverses the retweet relation from every root and returns the
// resulting forest. Any source failure aborts the whole call; no partial
// forest is returned.
func (b *Builder) Build(ctx context.Context, roots []Tweet) (*Forest, error) {
	ctx, span := tracer.Start(ctx, "cascade.Build", trace.WithAttributes(attribute.Int("roots", len(roots))))
	defer span.End()

	forest := newForest()
	visited := mapset.NewThreadUnsafeSet[int64]()

	for _, root := range roots {
		if !visited.Add(root.ID) {
			slog.Warn("cascade: root already reached, skipping", slog.Int64("tweet", root.ID))
			continue
		}
		frontier := []*Node{forest.addRoot(root)}

		for depth := 0; len(frontier) > 0; depth++ {
			if b.maxDepth > 0 && depth >= b.maxDepth {
				slog.Debug("cascade: max depth reached", slog.Int64("root", root.ID), slog.Int("depth", depth))
				break
			}
			next, err := expandFrontier(ctx, b.src, forest, visited, frontier)
			if err != nil {
				return nil, failSpan(span, fmt.Errorf("build cascade of %d: %w", root.ID, err))
			}
			frontier = next
		}

		slog.Debug("cascade: root expanded", slog.Int64("root", root.ID), slog.Int("nodes", forest.Len()))
		if b.afterRoot != nil {
			if err := b.afterRoot(ctx, forest); err != nil {
				return nil, failSpan(span, fmt.Errorf("after root %d: %w", root.ID, err))
			}
		}
	}

	span.SetAttributes(attribute.Int("nodes", forest.Len()))
	return forest, nil
}

// expandFrontier runs one breadth-first round: it fetches the retweets of
// every frontier node, attaches the unseen ones and returns them as the next
// frontier. An empty result means the traversal is complete.
func expandFrontier(ctx context.Context, src RetweetSource, forest *Forest, visited mapset.Set[int64], frontier []*Node) ([]*Node, error) {
	var next []*Node
	for _, parent := range frontier {
		slog.Debug("cascade: fetching retweets", slog.Int64("tweet", parent.ID))
		retweets, err := src.Retweets(ctx, parent.ID)
		retweetFetches.Add(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("retweets of %d: %w", parent.ID, err)
		}
		for _, rt := range retweets {
			if !visited.Add(rt.ID) {
				continue
			}
			next = append(next, forest.attach(parent, rt))
		}
	}
	return next, nil
}
