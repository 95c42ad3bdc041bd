package graphstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-cascade/cascade"
	"github.com/anatolykoptev/go-cascade/graphstore"
)

var _ cascade.GraphSink = (*graphstore.Sink)(nil)

func TestRenderForestIntoStore(t *testing.T) {
	src := cascade.SourceFunc(func(_ context.Context, id int64) ([]cascade.Tweet, error) {
		if id == 1 {
			return []cascade.Tweet{{ID: 2, Author: "bob"}, {ID: 3, Author: "carol"}}, nil
		}
		return nil, nil
	})
	forest, err := cascade.NewBuilder(src).Build(context.Background(), []cascade.Tweet{{ID: 1, Text: "root"}})
	require.NoError(t, err)

	client := graphstore.NewMemoryClient()
	loc, err := cascade.NewRenderer().Render(context.Background(), forest, graphstore.NewSink(client), "t1")
	require.NoError(t, err)
	require.Equal(t, "neo4j://cascade/t1", loc)

	writes := client.Writes()
	require.Len(t, writes, 3)
	require.Len(t, writes[1].Params["nodes"], 3)
	require.Len(t, writes[2].Params["edges"], 2)
}
