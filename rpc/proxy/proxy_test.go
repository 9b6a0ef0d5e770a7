package proxy_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/rpc"
	"github.com/sarchlab/cascade/rpc/proxy"
)

// fakeLocalInterface records the callbacks a worker replays back to the
// coordinator side's Core during recvLocked.
type fakeLocalInterface struct {
	writes []uint32
}

func (f *fakeLocalInterface) Write(id uint32, bits bv.Value) { f.writes = append(f.writes, id) }
func (f *fakeLocalInterface) WriteBool(id uint32, bit bool)   { f.writes = append(f.writes, id) }
func (f *fakeLocalInterface) Finish()                         {}
func (f *fakeLocalInterface) Restart()                        {}
func (f *fakeLocalInterface) Retarget()                       {}
func (f *fakeLocalInterface) Save(name string)                {}
func (f *fakeLocalInterface) FOpen(string, string) (uint32, bool) { return 0, false }
func (f *fakeLocalInterface) SBumpc(uint32) int32                { return -1 }
func (f *fakeLocalInterface) SGetc(uint32) int32                 { return -1 }
func (f *fakeLocalInterface) SGetn(uint32, []byte) int            { return -1 }
func (f *fakeLocalInterface) SPutc(uint32, byte) int32            { return -1 }
func (f *fakeLocalInterface) SPutn(uint32, []byte) int            { return -1 }
func (f *fakeLocalInterface) PubSeekOff(uint32, int64, int) int64 { return -1 }
func (f *fakeLocalInterface) PubSeekPos(uint32, int64) int64      { return -1 }
func (f *fakeLocalInterface) PubSync(uint32) int                  { return 0 }
func (f *fakeLocalInterface) InAvail(uint32) int64                { return 0 }

func TestCoreGetStateRoundTrip(t *testing.T) {
	client, worker := net.Pipe()
	defer client.Close()
	defer worker.Close()

	local := &fakeLocalInterface{}
	core := proxy.New(client, 7, local)

	want := map[uint32]bv.Value{3: bv.New(4, bv.Unsigned, 9)}
	done := make(chan struct{})
	go func() {
		h, _ := rpc.ReadHeader(worker)
		require.Equal(t, rpc.GET_STATE, h.Type)
		require.Equal(t, uint32(7), h.ID)
		rpc.WriteMap(worker, want)
		close(done)
	}()

	got := core.GetState()
	<-done
	require.True(t, got[3].Equal(want[3]))
}

func TestCoreEvaluateDeliversWriteCallbacks(t *testing.T) {
	client, worker := net.Pipe()
	defer client.Close()
	defer worker.Close()

	local := &fakeLocalInterface{}
	core := proxy.New(client, 1, local)

	done := make(chan struct{})
	go func() {
		h, _ := rpc.ReadHeader(worker)
		require.Equal(t, rpc.EVALUATE, h.Type)
		rpc.WriteHeader(worker, rpc.WRITE_BITS, 1)
		rpc.WriteU32(worker, 99)
		bv.Serialize(worker, bv.New(1, bv.Unsigned, 1))
		rpc.WriteHeader(worker, rpc.OKAY, 1)
		close(done)
	}()

	core.Evaluate()
	<-done
	require.Equal(t, []uint32{99}, local.writes)
	require.True(t, core.ThereAreReads())
}

func TestInterfaceWriteForwardsOverWire(t *testing.T) {
	client, worker := net.Pipe()
	defer client.Close()
	defer worker.Close()

	iface := proxy.NewInterface(worker, 5)
	done := make(chan struct{})
	go func() {
		iface.WriteBool(11, true)
		close(done)
	}()

	h, err := rpc.ReadHeader(client)
	require.NoError(t, err)
	require.Equal(t, rpc.WRITE_BOOL, h.Type)
	require.Equal(t, uint32(5), h.ID)
	id, err := rpc.ReadU32(client)
	require.NoError(t, err)
	require.Equal(t, uint32(11), id)
	bit, err := rpc.ReadBool(client)
	require.NoError(t, err)
	require.True(t, bit)
	<-done
}
