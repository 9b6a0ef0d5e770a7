package clock_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/engine"
	"github.com/sarchlab/cascade/engine/clock"
)

type fakeInterface struct {
	writes map[uint32]bv.Value
}

func newFakeInterface() *fakeInterface { return &fakeInterface{writes: map[uint32]bv.Value{}} }

func (f *fakeInterface) Write(id uint32, bits bv.Value) { f.writes[id] = bits }
func (f *fakeInterface) WriteBool(id uint32, bit bool)   {}
func (f *fakeInterface) Finish()                         {}
func (f *fakeInterface) Restart()                        {}
func (f *fakeInterface) Retarget()                       {}
func (f *fakeInterface) Save(name string)                {}
func (f *fakeInterface) FOpen(string, string) (uint32, bool) { return 0, false }
func (f *fakeInterface) SBumpc(uint32) int32                { return -1 }
func (f *fakeInterface) SGetc(uint32) int32                 { return -1 }
func (f *fakeInterface) SGetn(uint32, []byte) int            { return -1 }
func (f *fakeInterface) SPutc(uint32, byte) int32            { return -1 }
func (f *fakeInterface) SPutn(uint32, []byte) int            { return -1 }
func (f *fakeInterface) PubSeekOff(uint32, int64, int) int64 { return -1 }
func (f *fakeInterface) PubSeekPos(uint32, int64) int64      { return -1 }
func (f *fakeInterface) PubSync(uint32) int                  { return 0 }
func (f *fakeInterface) InAvail(uint32) int64                { return 0 }

func TestNewStartsAtInitialLevel(t *testing.T) {
	iface := newFakeInterface()
	c := clock.New(5, false, iface)
	require.Equal(t, uint64(0), c.GetState()[5].ToUint64())
}

func TestDoneStepFlipsAndQueuesUpdate(t *testing.T) {
	iface := newFakeInterface()
	c := clock.New(5, false, iface)

	c.DoneStep()
	require.True(t, c.ThereAreUpdates())
	require.Equal(t, uint64(1), c.GetState()[5].ToUint64())
}

func TestUpdateWritesThroughInterfaceAndClearsPending(t *testing.T) {
	iface := newFakeInterface()
	c := clock.New(5, false, iface)
	c.DoneStep()

	c.Update()
	require.False(t, c.ThereAreUpdates())
	require.Equal(t, uint64(1), iface.writes[5].ToUint64())
}

func TestSetStateOverridesValue(t *testing.T) {
	iface := newFakeInterface()
	c := clock.New(5, false, iface)
	c.SetState(map[uint32]bv.Value{5: bv.New(1, bv.Unsigned, 1)})
	require.Equal(t, uint64(1), c.GetState()[5].ToUint64())
}

func TestNeverHasPendingReads(t *testing.T) {
	iface := newFakeInterface()
	c := clock.New(5, true, iface)
	require.False(t, c.ThereAreReads())
	c.Evaluate()
	require.False(t, c.ThereAreReads())
}

var _ engine.Interface = (*fakeInterface)(nil)
