package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPContextRoundtrip(t *testing.T) {
	ctx := SetIPContext(context.Background(), "203.0.113.7")
	assert.Equal(t, "203.0.113.7", GetIPFromContext(ctx))

	ctx = SetIPContext(context.Background(), "2001:db8::1")
	assert.Equal(t, "2001:db8::1", GetIPFromContext(ctx))
}

func TestIPContext_EmptyAndAbsent(t *testing.T) {
	// An empty IP is not stored.
	ctx := SetIPContext(context.Background(), "")
	assert.Empty(t, GetIPFromContext(ctx))

	assert.Empty(t, GetIPFromContext(context.Background()))
}

func TestIPContext_PreservesOtherValues(t *testing.T) {
	type otherKey struct{}

	ctx := context.WithValue(context.Background(), otherKey{}, "kept")
	ctx = SetIPContext(ctx, "198.51.100.4")

	assert.Equal(t, "198.51.100.4", GetIPFromContext(ctx))
	assert.Equal(t, "kept", ctx.Value(otherKey{}))
}
