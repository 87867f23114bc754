package bsatn_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/kingsalone/sysrepo/internal/arena"
	"github.com/kingsalone/sysrepo/internal/bsatn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderWithoutAllocatorUsesMake(t *testing.T) {
	var buf bytes.Buffer
	w := bsatn.NewWriter(&buf)
	w.WriteString("hello")
	require.NoError(t, w.Error())

	r := bsatn.NewReader(&buf)
	tag, err := r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, bsatn.TagString, tag)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestReaderWithAllocatorRoutesThroughContext(t *testing.T) {
	owner := arena.NewOwner()
	ctx, err := owner.Acquire(context.Background())
	require.NoError(t, err)
	ctx.Inc()

	var buf bytes.Buffer
	w := bsatn.NewWriter(&buf)
	w.WriteString("piggyback")
	require.NoError(t, w.Error())

	r := bsatn.NewReaderWithAllocator(&buf, arena.AsSerializerAllocator(ctx))
	tag, err := r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, bsatn.TagString, tag)
	before := ctx.Used()
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "piggyback", s)
	assert.Greater(t, ctx.Used(), before, "decode buffer should have been carved out of the context")

	ctx.Dec()
	require.NoError(t, owner.Release(ctx))
}

func TestReaderWithAllocatorAppliesToRawBytesAndWideInts(t *testing.T) {
	owner := arena.NewOwner()
	ctx, err := owner.Acquire(context.Background())
	require.NoError(t, err)
	ctx.Inc()

	var buf bytes.Buffer
	w := bsatn.NewWriter(&buf)
	w.WriteBytes([]byte{1, 2, 3, 4})
	w.WriteU128Bytes([16]byte{})
	require.NoError(t, w.Error())

	r := bsatn.NewReaderWithAllocator(&buf, arena.AsSerializerAllocator(ctx))
	tag, err := r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, bsatn.TagBytes, tag)
	raw, err := r.ReadBytesRaw()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, raw)

	tag, err = r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, bsatn.TagU128, tag)
	wide, err := r.ReadU128Bytes()
	require.NoError(t, err)
	assert.Len(t, wide, 16)

	ctx.Dec()
	require.NoError(t, owner.Release(ctx))
}
