package runtime

import (
	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/engine"
	"github.com/sarchlab/cascade/streamio"
)

// boundInterface is the concrete engine.Interface every compiled instance
// in a Runtime shares: Write/WriteBool fan out through the dataplane, the
// stream methods go through streamio, and finish/restart/retarget/save post
// state-safe interrupts to the scheduler (§4.4, §6 "$restart/$retarget/
// $save... each posts a state-safe interrupt that the scheduler drains in
// phase 4").
type boundInterface struct {
	rt *Runtime
}

func (b *boundInterface) Write(id uint32, bits bv.Value) { b.rt.data.Write(id, bits) }
func (b *boundInterface) WriteBool(id uint32, bit bool)   { b.rt.data.WriteBool(id, bit) }

func (b *boundInterface) Finish() {
	b.rt.sched.PostInterrupt(func() { b.rt.onFinish() })
}

func (b *boundInterface) Restart() {
	b.rt.sched.PostInterrupt(func() { b.rt.onRestart() })
}

func (b *boundInterface) Retarget() {
	b.rt.sched.PostInterrupt(func() { b.rt.onRetarget() })
}

func (b *boundInterface) Save(name string) {
	b.rt.sched.PostInterrupt(func() { b.rt.onSave(name) })
}

func (b *boundInterface) FOpen(path string, mode string) (uint32, bool) {
	s := streamio.NewMemory(path)
	return b.rt.streams.Open(s), true
}

func (b *boundInterface) SBumpc(streamID uint32) int32           { return b.rt.streams.Bumpc(streamID) }
func (b *boundInterface) SGetc(streamID uint32) int32            { return b.rt.streams.Getc(streamID) }
func (b *boundInterface) SGetn(streamID uint32, buf []byte) int  { return b.rt.streams.Getn(streamID, buf) }
func (b *boundInterface) SPutc(streamID uint32, ch byte) int32   { return b.rt.streams.Putc(streamID, ch) }
func (b *boundInterface) SPutn(streamID uint32, buf []byte) int  { return b.rt.streams.Putn(streamID, buf) }
func (b *boundInterface) PubSeekOff(streamID uint32, off int64, whence int) int64 {
	return b.rt.streams.SeekOff(streamID, off, whence)
}
func (b *boundInterface) PubSeekPos(streamID uint32, pos int64) int64 {
	return b.rt.streams.SeekPos(streamID, pos)
}
func (b *boundInterface) PubSync(streamID uint32) int { return b.rt.streams.Sync(streamID) }
func (b *boundInterface) InAvail(streamID uint32) int64 { return b.rt.streams.InAvail(streamID) }

var _ engine.Interface = (*boundInterface)(nil)
