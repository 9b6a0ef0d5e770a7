package rpc_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/rpc"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rpc.WriteHeader(&buf, rpc.EVALUATE, 42))
	h, err := rpc.ReadHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, rpc.EVALUATE, h.Type)
	require.Equal(t, uint32(42), h.ID)
}

func TestU32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rpc.WriteU32(&buf, 0xdeadbeef))
	v, err := rpc.ReadU32(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v)
}

func TestU64RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rpc.WriteU64(&buf, 1<<40))
	v, err := rpc.ReadU64(&buf)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), v)
}

func TestBoolRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rpc.WriteBool(&buf, true))
	b, err := rpc.ReadBool(&buf)
	require.NoError(t, err)
	require.True(t, b)
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rpc.WriteString(&buf, "hello world"))
	s, err := rpc.ReadString(&buf)
	require.NoError(t, err)
	require.Equal(t, "hello world", s)
}

func TestMapRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	m := map[uint32]bv.Value{
		1: bv.New(8, bv.Unsigned, 0xab),
		2: bv.New(32, bv.Signed, 0xffffffff),
	}
	require.NoError(t, rpc.WriteMap(&buf, m))
	out, err := rpc.ReadMap(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.True(t, out[1].Equal(m[1]))
	require.True(t, out[2].Equal(m[2]))
}

func TestEmptyMapRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rpc.WriteMap(&buf, nil))
	out, err := rpc.ReadMap(&buf)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestTypeStringNamesKnownValues(t *testing.T) {
	require.Equal(t, "COMPILE", rpc.COMPILE.String())
	require.Equal(t, "OPEN_LOOP", rpc.OPEN_LOOP.String())
	require.Equal(t, "SPUTN", rpc.SPUTN.String())
}
