package graphstore

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	mergeCascade = `MERGE (:Cascade {name: $cascade})`

	mergeNodes = `UNWIND $nodes AS n
MATCH (c:Cascade {name: $cascade})
MERGE (t:CascadeNode {cascade: $cascade, key: n.key})
SET t.label = n.label, t.fill = n.fill
MERGE (c)-[:CONTAINS]->(t)`

	mergeEdges = `UNWIND $edges AS e
MATCH (a:CascadeNode {cascade: $cascade, key: e.from})
MATCH (b:CascadeNode {cascade: $cascade, key: e.to})
MERGE (a)-[:SPREAD_TO]->(b)`

	readEdges = `MATCH (a:CascadeNode {cascade: $cascade})-[:SPREAD_TO]->(b:CascadeNode)
RETURN a.key AS from, b.key AS to
ORDER BY from, to`
)

// Sink buffers nodes and edges and writes them to the graph as one named
// cascade. It implements cascade.GraphSink.
type Sink struct {
	client Client
	nodes  []map[string]any
	index  map[string]int
	edges  []map[string]any
}

// NewSink returns a Sink writing through client.
func NewSink(client Client) *Sink {
	return &Sink{client: client, index: make(map[string]int)}
}

// AddNode buffers a node. A repeated key overwrites the earlier label and fill.
func (s *Sink) AddNode(key, label, fill string) {
	n := map[string]any{"key": key, "label": label, "fill": fill}
	if i, ok := s.index[key]; ok {
		s.nodes[i] = n
		return
	}
	s.index[key] = len(s.nodes)
	s.nodes = append(s.nodes, n)
}

// AddEdge buffers a directed edge.
func (s *Sink) AddEdge(from, to string) {
	s.edges = append(s.edges, map[string]any{"from": from, "to": to})
}

// RenderToFile merges the buffered graph into the database under the
// cascade called name and returns its neo4j:// locator. Writes are
// idempotent, so rendering a growing forest repeatedly is safe.
func (s *Sink) RenderToFile(ctx context.Context, name string) (string, error) {
	params := map[string]any{"cascade": name}
	if _, err := s.client.ExecuteWrite(ctx, mergeCascade, params); err != nil {
		return "", fmt.Errorf("merge cascade %s: %w", name, err)
	}
	if len(s.nodes) > 0 {
		if _, err := s.client.ExecuteWrite(ctx, mergeNodes, map[string]any{"cascade": name, "nodes": s.nodes}); err != nil {
			return "", fmt.Errorf("merge nodes of %s: %w", name, err)
		}
	}
	if len(s.edges) > 0 {
		if _, err := s.client.ExecuteWrite(ctx, mergeEdges, map[string]any{"cascade": name, "edges": s.edges}); err != nil {
			return "", fmt.Errorf("merge edges of %s: %w", name, err)
		}
	}
	slog.Info("cascade stored",
		slog.String("cascade", name),
		slog.Int("nodes", len(s.nodes)),
		slog.Int("edges", len(s.edges)))
	return "neo4j://cascade/" + name, nil
}

// Edges reads back the stored edges of the named cascade as (from, to)
// key pairs.
func Edges(ctx context.Context, client Client, name string) ([][2]string, error) {
	res, err := client.ExecuteRead(ctx, readEdges, map[string]any{"cascade": name})
	if err != nil {
		return nil, fmt.Errorf("read edges of %s: %w", name, err)
	}
	edges := make([][2]string, 0, len(res.Records))
	for _, rec := range res.Records {
		from, ok1 := rec["from"].(string)
		to, ok2 := rec["to"].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("read edges of %s: malformed record %v", name, rec)
		}
		edges = append(edges, [2]string{from, to})
	}
	return edges, nil
}
