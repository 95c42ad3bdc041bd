package cascade

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type sinkNode struct {
	Label string
	Fill  string
}

type sinkEdge struct {
	From, To string
}

// recordingSink keeps whatever it is given.
type recordingSink struct {
	nodes    map[string]sinkNode
	order    []string
	edges    []sinkEdge
	rendered []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{nodes: make(map[string]sinkNode)}
}

func (s *recordingSink) AddNode(key, label, fill string) {
	s.nodes[key] = sinkNode{Label: label, Fill: fill}
	s.order = append(s.order, key)
}

func (s *recordingSink) AddEdge(from, to string) {
	s.edges = append(s.edges, sinkEdge{From: from, To: to})
}

func (s *recordingSink) RenderToFile(_ context.Context, path string) (string, error) {
	s.rendered = append(s.rendered, path)
	return path + ".pdf", nil
}

func sampleForest(t *testing.T) *Forest {
	t.Helper()
	src := &fakeSource{retweets: map[int64][]Tweet{
		100: {rt(1, "alice"), rt(2, "bob")},
		1:   {rt(3, "carol")},
		200: {rt(4, "dave")},
	}}
	forest, err := NewBuilder(src).Build(context.Background(), []Tweet{
		{ID: 100, Text: "first post", Author: "root"},
		{ID: 200, Text: "second post", Author: "root"},
	})
	require.NoError(t, err)
	return forest
}

func TestRender_LabelsAndEdges(t *testing.T) {
	forest := sampleForest(t)
	sink := newRecordingSink()

	artifact, err := NewRenderer(WithColors(map[int64]string{1: "lightblue"})).
		Render(context.Background(), forest, sink, "graph/shrink.gv")
	require.NoError(t, err)
	require.Equal(t, "graph/shrink.gv.pdf", artifact)
	require.Equal(t, []string{"graph/shrink.gv"}, sink.rendered)

	wantNodes := map[string]sinkNode{
		"100": {Label: "first post"},
		"200": {Label: "second post"},
		"1":   {Label: "alice", Fill: "lightblue"},
		"2":   {Label: "bob"},
		"3":   {Label: "carol"},
		"4":   {Label: "dave"},
	}
	if diff := cmp.Diff(wantNodes, sink.nodes); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"100", "1", "2", "3", "200", "4"}, sink.order)

	wantEdges := []sinkEdge{{"100", "1"}, {"100", "2"}, {"1", "3"}, {"200", "4"}}
	require.Equal(t, wantEdges, sink.edges)
}

func TestRender_Idempotent(t *testing.T) {
	forest := sampleForest(t)
	r := NewRenderer()

	first, second := newRecordingSink(), newRecordingSink()
	_, err := r.Render(context.Background(), forest, first, "a.gv")
	require.NoError(t, err)
	_, err = r.Render(context.Background(), forest, second, "a.gv")
	require.NoError(t, err)

	require.Equal(t, first.nodes, second.nodes)
	require.ElementsMatch(t, first.edges, second.edges)
}

func TestRender_NodeReachableTwiceEmittedOnce(t *testing.T) {
	forest := newForest()
	root := forest.addRoot(Tweet{ID: 1, Text: "root"})
	child := forest.attach(root, Tweet{ID: 2, Author: "x"})
	// Corrupt the tree on purpose: the same child listed twice.
	root.addChild(child)

	sink := newRecordingSink()
	_, err := NewRenderer().Render(context.Background(), forest, sink, "g.gv")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, sink.order)
	require.Len(t, sink.edges, 2)
}

func TestRenderer_AfterRoot(t *testing.T) {
	src := &fakeSource{retweets: map[int64][]Tweet{100: {rt(1, "a")}, 200: {rt(2, "b")}}}

	var sinks []*recordingSink
	newSink := func() GraphSink {
		s := newRecordingSink()
		sinks = append(sinks, s)
		return s
	}
	_, err := NewBuilder(src, WithAfterRoot(NewRenderer().AfterRoot(newSink, "out.gv"))).
		Build(context.Background(), []Tweet{{ID: 100}, {ID: 200}})
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	require.Len(t, sinks[0].nodes, 2)
	require.Len(t, sinks[1].nodes, 4)
}

func TestLoadColors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\"1265889240300257280\": lightblue\n\"42\": \"#ff6b6b\"\n"), 0o600))

	colors, err := LoadColors(path)
	require.NoError(t, err)
	require.Equal(t, map[int64]string{1265889240300257280: "lightblue", 42: "#ff6b6b"}, colors)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("notanid: red\n"), 0o600))
	_, err = LoadColors(bad)
	require.Error(t, err)
}
