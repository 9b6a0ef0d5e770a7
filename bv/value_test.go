package bv_test

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/bv"
)

func TestAddWraps(t *testing.T) {
	a := bv.New(4, bv.Unsigned, 0xF)
	b := bv.New(4, bv.Unsigned, 0x1)
	sum := bv.Add(a, b)
	assert.Equal(t, uint32(4), sum.Width())
	assert.Equal(t, uint64(0x0), sum.ToUint64())
}

func TestSignedComparison(t *testing.T) {
	a := bv.New(4, bv.Signed, 0x8)
	z := bv.New(4, bv.Signed, 0x0)
	assert.True(t, bv.Lt(a, z).ToBool())
}

func TestTrimAfterNot(t *testing.T) {
	a := bv.New(4, bv.Unsigned, 0x0)
	n := bv.Not(a)
	assert.Equal(t, uint64(0xF), n.ToUint64())
}

func TestConcatAndSlice(t *testing.T) {
	hi := bv.New(4, bv.Unsigned, 0xA)
	lo := bv.New(4, bv.Unsigned, 0xB)
	c := bv.Concat(hi, lo)
	require.Equal(t, uint32(8), c.Width())
	assert.Equal(t, uint64(0xAB), c.ToUint64())

	top := bv.Slice(c, 7, 4)
	assert.Equal(t, uint64(0xA), top.ToUint64())

	bit := bv.Slice(c, 0, 0)
	assert.Equal(t, uint32(1), bit.Width())
}

func TestPartAssignPreservesOutsideBits(t *testing.T) {
	dst := bv.New(8, bv.Unsigned, 0xFF)
	val := bv.New(4, bv.Unsigned, 0x0)
	out := bv.PartAssign(dst, 3, 0, val)
	assert.Equal(t, uint64(0xF0), out.ToUint64())
}

func TestSerializeRoundTrip(t *testing.T) {
	v := bv.New(13, bv.Signed, 0x1ABC)
	var buf bytes.Buffer
	require.NoError(t, bv.Serialize(&buf, v))

	back, err := bv.Deserialize(&buf)
	require.NoError(t, err)
	assert.True(t, v.Equal(back))
	assert.Equal(t, v.Kind(), back.Kind())
}

func TestReadWriteBase16RoundTrip(t *testing.T) {
	v := bv.New(16, bv.Unsigned, 0xBEEF)
	var buf bytes.Buffer
	require.NoError(t, bv.Write(&buf, v, 16))

	back, err := bv.Read(bufio.NewReader(strings.NewReader(buf.String())), 16, 16, bv.Unsigned)
	require.NoError(t, err)
	assert.Equal(t, v.ToUint64(), back.ToUint64())
}

func TestWriteDecimalNegative(t *testing.T) {
	v := bv.New(8, bv.Signed, uint64(int8(-5)))
	var buf bytes.Buffer
	require.NoError(t, bv.Write(&buf, v, 10))
	assert.Equal(t, "-5", buf.String())
}

func TestBlockWordRoundTrip(t *testing.T) {
	v := bv.New(32, bv.Unsigned, 0)
	bv.WriteWord[uint8](&v, 1, 0xAB)
	assert.Equal(t, uint8(0xAB), bv.ReadWord[uint8](v, 1))
}
