package dataplane_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/dataplane"
)

type fakeReader struct {
	reads []bv.Value
}

func (f *fakeReader) Read(id uint32, bits bv.Value) {
	f.reads = append(f.reads, bits)
}

func TestWriteDeliversToRegisteredReaders(t *testing.T) {
	d := dataplane.New()
	r := &fakeReader{}
	d.Register(7, r)

	d.Write(7, bv.New(4, bv.Unsigned, 0xA))

	require.Len(t, r.reads, 1)
	assert.Equal(t, uint64(0xA), r.reads[0].ToUint64())
}

func TestWriteDedupsEqualValues(t *testing.T) {
	d := dataplane.New()
	r := &fakeReader{}
	d.Register(1, r)

	d.Write(1, bv.New(4, bv.Unsigned, 0x5))
	d.Write(1, bv.New(4, bv.Unsigned, 0x5))
	d.Write(1, bv.New(4, bv.Unsigned, 0x6))

	require.Len(t, r.reads, 2)
	assert.Equal(t, uint64(0x5), r.reads[0].ToUint64())
	assert.Equal(t, uint64(0x6), r.reads[1].ToUint64())
}

func TestWriteBoolFlipsLowBit(t *testing.T) {
	d := dataplane.New()
	r := &fakeReader{}
	d.Register(3, r)

	d.WriteBool(3, true)
	d.WriteBool(3, true)
	d.WriteBool(3, false)

	require.Len(t, r.reads, 2)
	assert.Equal(t, uint64(1), r.reads[0].ToUint64())
	assert.Equal(t, uint64(0), r.reads[1].ToUint64())
}

func TestDeregisterStopsDelivery(t *testing.T) {
	d := dataplane.New()
	r := &fakeReader{}
	d.Register(2, r)
	d.Deregister(2, r)

	d.Write(2, bv.New(4, bv.Unsigned, 0x1))

	assert.Empty(t, r.reads)
}

func TestDeregisterMissingEntryIsNoop(t *testing.T) {
	d := dataplane.New()
	r := &fakeReader{}
	assert.NotPanics(t, func() { d.Deregister(99, r) })
	assert.NotPanics(t, func() { d.DeregisterAll(r) })
}

func TestRegisterIsIdempotent(t *testing.T) {
	d := dataplane.New()
	r := &fakeReader{}
	d.Register(4, r)
	d.Register(4, r)

	d.Write(4, bv.New(2, bv.Unsigned, 0x1))

	assert.Len(t, r.reads, 1)
}

func TestValueReportsPresence(t *testing.T) {
	d := dataplane.New()
	_, ok := d.Value(5)
	assert.False(t, ok)

	d.Write(5, bv.New(2, bv.Unsigned, 0x2))
	v, ok := d.Value(5)
	require.True(t, ok)
	assert.Equal(t, uint64(0x2), v.ToUint64())
}
