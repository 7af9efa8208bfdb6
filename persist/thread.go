package persist

import (
	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// writeThread emits a suspended coroutine: status scalars, the live
// stack, the call-info frames head to tail, then the open-upvalue list.
// Stack and code positions travel as offsets so the reader is free to
// reallocate.
func (p *persister) writeThread(t *vm.Thread) error {
	switch {
	case t == p.s.Current:
		return typed(types.ErrKindUnsupported, &p.path, "cannot persist currently running thread")
	case t.Protected || t.ErrFunc != 0:
		return typed(types.ErrKindUnsupported, &p.path, "cannot persist thread with an active error handler")
	case t.InHook:
		return typed(types.ErrKindUnsupported, &p.path, "cannot persist thread suspended inside a hook")
	}
	// Hooks themselves are silently dropped.

	if err := p.w.Byte(byte(t.Status)); err != nil {
		return err
	}
	if err := p.w.U16(t.NCalls); err != nil {
		return err
	}
	if err := p.w.Bool(t.AllowHook); err != nil {
		return err
	}

	if err := p.w.Size(uint64(len(t.Stack))); err != nil {
		return err
	}
	if err := p.w.Size(uint64(t.Top)); err != nil {
		return err
	}
	for i := 0; i < t.Top; i++ {
		p.path.pushf("@stack[%d]", i)
		err := p.value(t.Stack[i])
		p.path.pop()
		if err != nil {
			return err
		}
	}

	if err := p.w.Bool(len(t.Frames) > 0); err != nil {
		return err
	}
	for i := range t.Frames {
		p.path.pushf("@frame[%d]", i)
		err := p.writeFrame(&t.Frames[i])
		p.path.pop()
		if err != nil {
			return err
		}
		if err := p.w.Bool(i+1 < len(t.Frames)); err != nil {
			return err
		}
	}

	for i, uv := range t.OpenUpvals() {
		if err := p.w.Size(uint64(uv.StackSlot())); err != nil {
			return err
		}
		p.path.pushf("@openupval[%d]", i)
		err := p.keyedUpval(uv)
		p.path.pop()
		if err != nil {
			return err
		}
	}
	return p.w.Size(format.ListSentinel)
}

func (p *persister) writeFrame(f *vm.Frame) error {
	if err := p.w.Size(uint64(f.FuncOff)); err != nil {
		return err
	}
	if err := p.w.Size(uint64(f.TopOff)); err != nil {
		return err
	}
	if err := p.w.I16(f.NResults); err != nil {
		return err
	}
	if err := p.w.Byte(byte(f.Flags)); err != nil {
		return err
	}
	if err := p.w.Offset(f.Extra); err != nil {
		return err
	}
	if f.Flags&vm.FrameInterpreted != 0 {
		if err := p.w.Size(uint64(f.BaseOff)); err != nil {
			return err
		}
		return p.w.Size(uint64(f.SavedPC))
	}
	if err := p.w.Byte(f.HostStatus); err != nil {
		return err
	}
	if !f.NeedsContinuation() {
		return nil
	}
	if err := p.w.Offset(f.Ctx); err != nil {
		return err
	}
	// The continuation function only travels through the permanents
	// table, like every native function.
	p.path.push("@continuation")
	defer p.path.pop()
	return p.value(f.K)
}

// readThread rebuilds a coroutine: fresh thread registered first, stack
// reallocated to the written size, slots decoded in order, frames
// extended one by one, then the open-upvalue list replayed against the
// reconstructed stack.
func (u *unpersister) readThread() (vm.Value, error) {
	t := vm.NewThread()
	u.refs.register(t)

	status, err := u.r.Byte()
	if err != nil {
		return nil, err
	}
	if status > byte(vm.StatusDead) {
		return nil, typed(types.ErrKindCorrupt, &u.path, "invalid thread status %d", status)
	}
	t.Status = vm.Status(status)
	if t.NCalls, err = u.r.U16(); err != nil {
		return nil, err
	}
	if t.AllowHook, err = u.r.Bool(); err != nil {
		return nil, err
	}

	alloc, err := u.count()
	if err != nil {
		return nil, err
	}
	top, err := u.count()
	if err != nil {
		return nil, err
	}
	if top > alloc {
		return nil, typed(types.ErrKindCorrupt, &u.path, "thread top %d beyond stack size %d", top, alloc)
	}
	t.ResizeStack(alloc)
	t.Top = top
	for i := 0; i < top; i++ {
		u.path.pushf("@stack[%d]", i)
		v, err := u.valueOf()
		u.path.pop()
		if err != nil {
			return nil, err
		}
		t.Stack[i] = v
	}

	more, err := u.r.Bool()
	if err != nil {
		return nil, err
	}
	for i := 0; more; i++ {
		u.path.pushf("@frame[%d]", i)
		f, err := u.readFrame(t)
		u.path.pop()
		if err != nil {
			return nil, err
		}
		t.PushFrame(f)
		if more, err = u.r.Bool(); err != nil {
			return nil, err
		}
	}

	for i := 0; ; i++ {
		off, err := u.r.Size()
		if err != nil {
			return nil, err
		}
		if off == format.ListSentinel {
			break
		}
		if off >= uint64(t.Top) {
			return nil, typed(types.ErrKindCorrupt, &u.path, "open upvalue beyond stack top (slot %d)", off)
		}
		nuv := t.FindOrCreateUpval(int(off))
		u.path.pushf("@openupval[%d]", i)
		rec, err := u.upvalDescriptor()
		u.path.pop()
		if err != nil {
			return nil, err
		}
		if rec.uv != nil && rec.uv != nuv {
			// A closure decoded earlier bound this upvalue closed. Walk
			// the back-pointers and rebind every referring closure to
			// the thread's open upvalue; the closed one becomes garbage.
			for _, back := range rec.backs {
				*back = nuv
			}
		}
		rec.uv = nuv
	}
	return t, nil
}

func (u *unpersister) readFrame(t *vm.Thread) (vm.Frame, error) {
	var f vm.Frame
	funcOff, err := u.count()
	if err != nil {
		return f, err
	}
	topOff, err := u.count()
	if err != nil {
		return f, err
	}
	if f.NResults, err = u.r.I16(); err != nil {
		return f, err
	}
	flags, err := u.r.Byte()
	if err != nil {
		return f, err
	}
	f.Flags = vm.FrameFlags(flags)
	if f.Extra, err = u.r.Offset(); err != nil {
		return f, err
	}
	if funcOff >= t.Top {
		return f, typed(types.ErrKindCorrupt, &u.path, "frame function offset %d beyond stack top", funcOff)
	}
	f.FuncOff = funcOff
	f.TopOff = topOff

	if f.Flags&vm.FrameInterpreted != 0 {
		base, err := u.count()
		if err != nil {
			return f, err
		}
		pc, err := u.count()
		if err != nil {
			return f, err
		}
		cl, ok := t.Stack[f.FuncOff].(*vm.Closure)
		if !ok || cl.IsHost() {
			return f, typed(types.ErrKindCorrupt, &u.path, "interpreted frame over a non-interpreted function")
		}
		if pc > len(cl.Proto.Code) {
			return f, typed(types.ErrKindCorrupt, &u.path, "saved pc %d beyond code size %d", pc, len(cl.Proto.Code))
		}
		f.BaseOff = base
		f.SavedPC = pc
		return f, nil
	}

	if f.HostStatus, err = u.r.Byte(); err != nil {
		return f, err
	}
	if !f.NeedsContinuation() {
		return f, nil
	}
	if f.Ctx, err = u.r.Offset(); err != nil {
		return f, err
	}
	u.path.push("@continuation")
	k, err := u.valueOf()
	u.path.pop()
	if err != nil {
		return f, err
	}
	switch fn := k.(type) {
	case *vm.HostFunc:
		f.K = fn
	case *vm.Closure:
		if !fn.IsHost() {
			return f, typed(types.ErrKindCorrupt, &u.path, "continuation is not a native function")
		}
		f.K = fn
	default:
		return f, typed(types.ErrKindCorrupt, &u.path, "continuation is a %s", vm.TypeName(k))
	}
	return f, nil
}
