package engine

// Reserved stream ids pre-bound by the runtime before any engine starts
// (§6 "stream-buffer bindings for stdin/stdout/stderr/stdwarn/stdinfo/
// stdlog"). $display/$write route through Interface.SPutn on StreamStdout
// rather than through a dedicated display method, keeping Interface's
// method set exactly the one spec.md §4.4 lists.
const (
	StreamStdout uint32 = iota
	StreamStderr
	StreamStdwarn
	StreamStdinfo
	StreamStdlog
)
