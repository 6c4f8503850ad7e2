package batchloader_test

import (
	"context"
	"testing"

	"github.com/probablyarth/batchloader-go"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	require.Nil(t, batchloader.FromContext[int, *string](context.Background()))

	s := newFakeStore(nil)
	b, _ := newManual(t, s)
	ctx := batchloader.NewContext(context.Background(), b)

	require.Same(t, b, batchloader.FromContext[int, *string](ctx))
	require.Nil(t, batchloader.FromContext[string, *string](ctx), "lookup is by key and value type")
}
