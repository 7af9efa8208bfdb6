package vm

import "sort"

// Status is a thread's lifecycle state.
type Status uint8

const (
	StatusOK    Status = iota // runnable, never resumed or returned normally
	StatusYield               // suspended in a yield
	StatusDead                // finished or errored out
)

var statusNames = [...]string{"ok", "suspended", "dead"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "invalid"
}

// FrameFlags are the per-frame status bits of a call-info record.
type FrameFlags uint8

const (
	// FrameInterpreted marks a frame executing bytecode; its BaseOff
	// and SavedPC fields are meaningful. Frames without the flag are
	// host calls and use HostStatus, Ctx and K instead.
	FrameInterpreted FrameFlags = 1 << iota
	// FrameTail marks a frame entered through a tail call.
	FrameTail
	// FrameYielded marks a host frame suspended inside a yield; its
	// continuation fields are live.
	FrameYielded
	// FrameYieldedPCall marks a host frame suspended inside a yieldable
	// protected call.
	FrameYieldedPCall
	// FrameHooked marks a frame entered from a debug hook.
	FrameHooked
)

// Frame is one element of a thread's call stack. Positions are held as
// offsets — slots from the stack base, instructions from the code base —
// so they stay valid across stack reallocation.
type Frame struct {
	FuncOff  int   // stack offset of the function slot
	TopOff   int   // stack offset of the frame top
	NResults int16 // expected result count; -1 for multiple
	Flags    FrameFlags
	Extra    int64

	// Interpreted frames.
	BaseOff int // stack offset of the register base
	SavedPC int // instruction offset into the callee's code

	// Host frames.
	HostStatus uint8
	Ctx        int64 // continuation context
	K          Value // continuation function
}

// NeedsContinuation reports whether the frame's continuation fields
// must survive persistence.
func (f *Frame) NeedsContinuation() bool {
	return f.Flags&(FrameYielded|FrameYieldedPCall) != 0
}

// BasicStackSize is the value-stack allocation of a fresh thread.
const BasicStackSize = 40

// Thread is a coroutine: a value stack, a call-info stack, and the list
// of upvalues still open over stack slots.
type Thread struct {
	Status Status
	Stack  []Value
	Top    int
	Frames []Frame

	// open upvalues, sorted by descending stack slot
	open []*Upvalue

	NCalls    uint16 // nesting depth of host calls (reentrancy counter)
	AllowHook bool

	// Hook state. Hooks themselves are not persistable; a thread that
	// yielded from inside one cannot be persisted at all.
	HookMask uint8
	InHook   bool

	// Error-handling state. A thread with a live protected frame or a
	// registered error handler cannot be persisted.
	ErrFunc   int
	Protected bool
}

// NewThread returns a fresh runnable thread with an empty call stack.
func NewThread() *Thread {
	return &Thread{Stack: make([]Value, BasicStackSize), AllowHook: true}
}

// ResizeStack grows or shrinks the value stack allocation to n slots,
// preserving contents. Open upvalues stay valid because they alias
// slots by index.
func (t *Thread) ResizeStack(n int) {
	if n == len(t.Stack) {
		return
	}
	ns := make([]Value, n)
	copy(ns, t.Stack)
	t.Stack = ns
	if t.Top > n {
		t.Top = n
	}
}

// Push appends v at the top of the value stack, growing it if needed.
func (t *Thread) Push(v Value) {
	if t.Top == len(t.Stack) {
		t.ResizeStack(len(t.Stack)*2 + 1)
	}
	t.Stack[t.Top] = v
	t.Top++
}

// PushFrame appends a call-info frame at the tail of the call stack.
func (t *Thread) PushFrame(f Frame) *Frame {
	t.Frames = append(t.Frames, f)
	return &t.Frames[len(t.Frames)-1]
}

// OpenUpvals returns the open-upvalue list, ordered by descending slot.
// The slice is owned by the thread.
func (t *Thread) OpenUpvals() []*Upvalue {
	return t.open
}

// FindOrCreateUpval returns the open upvalue over stack slot, creating
// and linking one if none exists yet. This is the find-or-create
// primitive the coroutine reader relies on.
func (t *Thread) FindOrCreateUpval(slot int) *Upvalue {
	i := sort.Search(len(t.open), func(i int) bool { return t.open[i].slot <= slot })
	if i < len(t.open) && t.open[i].slot == slot {
		return t.open[i]
	}
	u := &Upvalue{th: t, slot: slot}
	t.open = append(t.open, nil)
	copy(t.open[i+1:], t.open[i:])
	t.open[i] = u
	return u
}

// CloseUpvals closes every open upvalue over slot from or above and
// unlinks it from the thread.
func (t *Thread) CloseUpvals(from int) {
	kept := t.open[:0]
	for _, u := range t.open {
		if u.slot >= from {
			u.Close()
			continue
		}
		kept = append(kept, u)
	}
	t.open = kept
}
