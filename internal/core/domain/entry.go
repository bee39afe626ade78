package domain

import "sync/atomic"

// EntryState is the lifecycle state of a cache entry.
type EntryState uint32

const (
	// EntryEmpty means no compile request has been issued yet.
	EntryEmpty EntryState = iota
	// EntryPending means a compile request has been issued and has not produced an artifact.
	EntryPending
	// EntryReady means the artifact is installed.
	EntryReady
	// EntryFailed means the compile was rejected. The entry never becomes ready and is never
	// issued again for the rest of the process.
	EntryFailed
)

// String returns the state name.
func (s EntryState) String() string {
	switch s {
	case EntryEmpty:
		return "empty"
	case EntryPending:
		return "pending"
	case EntryReady:
		return "ready"
	case EntryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry is the cache slot of one UID.
//
// The state word is the only synchronization point: the artifact is written before the
// state becomes EntryReady and is never written again, so readers that observe EntryReady
// may read Bytes without locking.
type Entry struct {
	state    atomic.Uint32
	bytecode []byte
	source   string
}

// NewReadyEntry returns an entry that is already ready with the given artifact.
func NewReadyEntry(bytecode []byte) *Entry {
	e := &Entry{bytecode: bytecode}
	e.state.Store(uint32(EntryReady))
	return e
}

var passthrough = NewReadyEntry(nil)

// Passthrough returns the shared entry used by stages that need no program.
func Passthrough() *Entry {
	return passthrough
}

// State returns the current lifecycle state.
func (e *Entry) State() EntryState {
	return EntryState(e.state.Load())
}

// Ready reports whether the artifact is installed.
func (e *Entry) Ready() bool {
	return e.State() == EntryReady
}

// MarkIssued moves the entry from empty to pending and reports whether this caller made the move.
// Exactly one caller ever receives true for a given entry.
func (e *Entry) MarkIssued() bool {
	return e.state.CompareAndSwap(uint32(EntryEmpty), uint32(EntryPending))
}

// Failed reports whether the compile of the entry was rejected.
func (e *Entry) Failed() bool {
	return e.State() == EntryFailed
}

// Fail moves a pending entry to failed and reports whether it did.
func (e *Entry) Fail() bool {
	return e.state.CompareAndSwap(uint32(EntryPending), uint32(EntryFailed))
}

// Install publishes the artifact and marks the entry ready.
// It reports false and leaves the entry untouched when the entry is already ready or failed.
//
// The check and the write are not atomic together: only one goroutine may install into a
// given entry. The cache installs from its single draining goroutine.
func (e *Entry) Install(bytecode []byte, source string) bool {
	if st := e.State(); st == EntryReady || st == EntryFailed {
		return false
	}
	e.bytecode = bytecode
	e.source = source
	e.state.Store(uint32(EntryReady))
	return true
}

// Replace installs the artifact whatever the current state and reports whether an earlier
// artifact was overwritten. Readers may hold the old bytes, so it is only valid while the
// entry is not yet shared, as during mirror replay.
func (e *Entry) Replace(bytecode []byte) bool {
	replaced := e.Ready()
	e.bytecode = bytecode
	e.source = ""
	e.state.Store(uint32(EntryReady))
	return replaced
}

// Bytes returns a view of the artifact. The slice is owned by the cache and must not be modified.
// It is nil unless the entry is ready.
func (e *Entry) Bytes() []byte {
	if !e.Ready() {
		return nil
	}
	return e.bytecode
}

// Source returns the program text retained for diagnostics, if any.
func (e *Entry) Source() string {
	if !e.Ready() {
		return ""
	}
	return e.source
}
