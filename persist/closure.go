package persist

import (
	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// upvalRecord is the intermediate the reader builds for every persisted
// upvalue. It is what the upvalue's reference id resolves to, so every
// closure (and the thread codec) consuming the same upvalue sees the
// same record:
//
//	val   — the value carried in the stream (slot 1)
//	uv    — the reconstructed upvalue, once some consumer created or
//	        reopened it (slot 2)
//	backs — addresses of every closure upvalue slot bound through this
//	        record, so reopening can rebind them all in one pass
type upvalRecord struct {
	val   vm.Value
	uv    *vm.Upvalue
	backs []**vm.Upvalue
}

// writeClosure emits a function body: the sub-kind byte, the upvalue
// count, then the host or interpreted payload.
func (p *persister) writeClosure(c *vm.Closure) error {
	if len(c.Upvals) > 255 {
		return typed(types.ErrKindUnsupported, &p.path, "closure has %d upvalues", len(c.Upvals))
	}
	if c.IsHost() {
		if err := p.w.Byte(format.ClosureHost); err != nil {
			return err
		}
		if err := p.w.Byte(byte(len(c.Upvals))); err != nil {
			return err
		}
		// The native function itself is only portable through the
		// permanents table; the dispatcher enforces that.
		if err := p.value(c.Host); err != nil {
			return err
		}
		// Host-closure upvalues are never open or shared: plain values.
		for i, u := range c.Upvals {
			if u == nil {
				return typed(types.ErrKindUnsupported, &p.path, "closure upvalue %d is unbound", i)
			}
			p.path.pushf("@upvalue[%d]", i)
			err := p.value(u.Get())
			p.path.pop()
			if err != nil {
				return err
			}
		}
		return nil
	}

	if err := p.w.Byte(format.ClosureInterpreted); err != nil {
		return err
	}
	if err := p.w.Byte(byte(len(c.Upvals))); err != nil {
		return err
	}
	if err := p.keyedProto(c.Proto); err != nil {
		return err
	}
	for i, u := range c.Upvals {
		if u == nil {
			return typed(types.ErrKindUnsupported, &p.path, "closure upvalue %d is unbound", i)
		}
		p.path.pushf("@upvalue[%d]", i)
		err := p.keyedUpval(u)
		p.path.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// readClosure decodes a function body. The closure is allocated with
// nil upvalue slots and registered before anything else so cycles back
// into it resolve; slots are then bound one by one through the shared
// upvalue records.
func (u *unpersister) readClosure() (vm.Value, error) {
	sub, err := u.r.Byte()
	if err != nil {
		return nil, err
	}
	nup, err := u.r.Byte()
	if err != nil {
		return nil, err
	}

	switch sub {
	case format.ClosureHost:
		cl := &vm.Closure{Upvals: make([]*vm.Upvalue, nup)}
		u.refs.register(cl)
		fnv, err := u.valueOf()
		if err != nil {
			return nil, err
		}
		switch fn := fnv.(type) {
		case *vm.HostFunc:
			cl.Host = fn
		case *vm.Closure:
			if !fn.IsHost() {
				return nil, typed(types.ErrKindPerms, &u.path,
					"host closure resolved to an interpreted function")
			}
			cl.Host = fn.Host
		default:
			return nil, typed(types.ErrKindPerms, &u.path,
				"host closure resolved to a %s", vm.TypeName(fnv))
		}
		for i := range cl.Upvals {
			u.path.pushf("@upvalue[%d]", i)
			v, err := u.valueOf()
			u.path.pop()
			if err != nil {
				return nil, err
			}
			cl.Upvals[i] = vm.NewUpvalue(v)
		}
		return cl, nil

	case format.ClosureInterpreted:
		cl := &vm.Closure{Upvals: make([]*vm.Upvalue, nup)}
		u.refs.register(cl)
		pv, err := u.decode()
		if err != nil {
			return nil, err
		}
		proto, ok := pv.(*vm.Proto)
		if !ok {
			return nil, typed(types.ErrKindCorrupt, &u.path, "closure prototype slot holds a %T", pv)
		}
		cl.Proto = proto
		for i := range cl.Upvals {
			u.path.pushf("@upvalue[%d]", i)
			rec, err := u.upvalDescriptor()
			u.path.pop()
			if err != nil {
				return nil, err
			}
			if rec.uv != nil {
				// Shared: bind through the existing upvalue. The value
				// is overwritten from the record regardless — a cycle
				// through the upvalue may have left a stale nil behind
				// on the visit that created it.
				cl.Upvals[i] = rec.uv
				rec.uv.Set(rec.val)
			} else {
				uv := vm.NewUpvalue(rec.val)
				rec.uv = uv
				cl.Upvals[i] = uv
			}
			rec.backs = append(rec.backs, &cl.Upvals[i])
		}
		return cl, nil
	}
	return nil, typed(types.ErrKindCorrupt, &u.path, "invalid closure sub-kind %d", sub)
}

// upvalDescriptor decodes one upvalue reference, yielding the shared
// record: fresh on first occurrence, the previously built one on every
// later occurrence.
func (u *unpersister) upvalDescriptor() (*upvalRecord, error) {
	v, err := u.decode()
	if err != nil {
		return nil, err
	}
	rec, ok := v.(*upvalRecord)
	if !ok {
		return nil, typed(types.ErrKindCorrupt, &u.path, "upvalue slot resolved to a %T", v)
	}
	return rec, nil
}

// readUpval decodes an upvalue body into a fresh record. The record is
// registered before its value decodes so graphs cycling through the
// upvalue resolve to the record.
func (u *unpersister) readUpval() (*upvalRecord, error) {
	rec := &upvalRecord{}
	u.refs.register(rec)
	v, err := u.valueOf()
	if err != nil {
		return nil, err
	}
	rec.val = v
	return rec, nil
}
