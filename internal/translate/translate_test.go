package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPassthroughReturnsTextUnchanged(t *testing.T) {
	p := New()
	require.NoError(t, p.Initialize(context.Background()))

	out, err := p.Translate(context.Background(), "hello world", "en", "fr")
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
}
