package persist

import (
	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// Special-persistence outcomes of the metatable consultation.
type specialAction int

const (
	specialDefault  specialAction = iota // metafield absent
	specialExplicit                      // metafield is true
	specialCallback                      // metafield produced a reconstruction closure
)

// checkSpecial consults v's metatable for the persistence metafield and
// classifies the result. For specialCallback the returned value is the
// reconstruction callable the metafield's function handed back.
func (p *persister) checkSpecial(v vm.Value, meta *vm.Table) (specialAction, vm.Value, error) {
	if meta == nil {
		return specialDefault, nil, nil
	}
	mf := meta.RawGet(p.cfg.persistKey())
	switch x := mf.(type) {
	case nil:
		return specialDefault, nil, nil
	case bool:
		if !x {
			return 0, nil, typed(types.ErrKindForbidden, &p.path,
				"%s marked non-persistable via %s", vm.TypeName(v), p.cfg.persistKey())
		}
		return specialExplicit, nil, nil
	}
	if !vm.IsCallable(mf) {
		return 0, nil, typed(types.ErrKindCallback, &p.path,
			"%s metafield must be nil, a boolean or a callable, got %s",
			p.cfg.persistKey(), vm.TypeName(mf))
	}
	args := []vm.Value{v}
	if p.cfg.PassIO {
		args = append(args, vm.Surrogate(p.w))
	}
	res, err := p.s.Call(mf, args...)
	if err != nil {
		return 0, nil, &types.Error{Kind: types.ErrKindCallback,
			Msg: "special-persistence callback failed", Path: p.path.String(), Err: err}
	}
	if len(res) < 1 || !vm.IsCallable(res[0]) {
		return 0, nil, typed(types.ErrKindCallback, &p.path,
			"special-persistence callback did not return a callable")
	}
	return specialCallback, res[0], nil
}

// writeTable emits a table body: either the special shape (the
// reconstruction closure persisted in the table's place) or the literal
// shape (unordered pairs, nil sentinel key, then the metatable slot).
func (p *persister) writeTable(t *vm.Table) error {
	action, reconstruct, err := p.checkSpecial(t, t.Meta())
	if err != nil {
		return err
	}
	if action == specialCallback {
		if err := p.w.Byte(format.BodySpecial); err != nil {
			return err
		}
		p.path.push("@reconstruct")
		defer p.path.pop()
		return p.value(reconstruct)
	}

	if err := p.w.Byte(format.BodyLiteral); err != nil {
		return err
	}
	t.Range(func(k, v vm.Value) bool {
		if err = p.value(k); err != nil {
			return false
		}
		p.path.push(keySeg(k))
		err = p.value(v)
		p.path.pop()
		return err == nil
	})
	if err != nil {
		return err
	}
	// sentinel key
	if err := p.w.Int(format.TagNil); err != nil {
		return err
	}
	p.path.push("@metatable")
	defer p.path.pop()
	if t.Meta() != nil {
		return p.value(t.Meta())
	}
	return p.w.Int(format.TagNil)
}

// writeUserdata emits a userdata body. Userdata has no portable literal
// form by default: the payload is only dumped raw when the metatable
// explicitly consents via a true metafield.
func (p *persister) writeUserdata(u *vm.Userdata) error {
	action, reconstruct, err := p.checkSpecial(u, u.Meta())
	if err != nil {
		return err
	}
	switch action {
	case specialCallback:
		if err := p.w.Byte(format.BodySpecial); err != nil {
			return err
		}
		p.path.push("@reconstruct")
		defer p.path.pop()
		return p.value(reconstruct)
	case specialDefault:
		return typed(types.ErrKindForbidden, &p.path,
			"userdata requires explicit %s consent", p.cfg.persistKey())
	}

	if err := p.w.Byte(format.BodyLiteral); err != nil {
		return err
	}
	if err := p.w.Size(uint64(len(u.Data))); err != nil {
		return err
	}
	if err := p.w.Bytes(u.Data); err != nil {
		return err
	}
	p.path.push("@metatable")
	defer p.path.pop()
	if u.Meta() != nil {
		return p.value(u.Meta())
	}
	return p.w.Int(format.TagNil)
}

// readTable decodes a table body. The literal path registers the fresh
// table before consuming pairs so cycles through keys or values resolve;
// the special path reserves a slot, rebuilds the object through the
// reconstruction closure, and rewrites the slot.
func (u *unpersister) readTable() (vm.Value, error) {
	shape, err := u.r.Byte()
	if err != nil {
		return nil, err
	}
	if shape == format.BodySpecial {
		return u.readSpecial(vm.KindTable)
	}
	if shape != format.BodyLiteral {
		return nil, typed(types.ErrKindCorrupt, &u.path, "invalid table body shape %d", shape)
	}

	t := vm.NewTable()
	u.refs.register(t)
	for {
		k, err := u.valueOf()
		if err != nil {
			return nil, err
		}
		if k == nil {
			break
		}
		u.path.push(keySeg(k))
		v, err := u.valueOf()
		u.path.pop()
		if err != nil {
			return nil, err
		}
		if v == nil {
			// The writer terminates pairs with a nil key and can never
			// produce a nil value, so this is stream corruption.
			return nil, typed(types.ErrKindCorrupt, &u.path, "nil value in table body")
		}
		t.RawSet(k, v)
	}
	u.path.push("@metatable")
	mv, err := u.valueOf()
	u.path.pop()
	if err != nil {
		return nil, err
	}
	if mv != nil {
		mt, ok := mv.(*vm.Table)
		if !ok {
			return nil, typed(types.ErrKindCorrupt, &u.path, "table metatable slot holds a %s", vm.TypeName(mv))
		}
		t.SetMeta(mt)
	}
	return t, nil
}

// readUserdata decodes a userdata body.
func (u *unpersister) readUserdata() (vm.Value, error) {
	shape, err := u.r.Byte()
	if err != nil {
		return nil, err
	}
	if shape == format.BodySpecial {
		return u.readSpecial(vm.KindUserdata)
	}
	if shape != format.BodyLiteral {
		return nil, typed(types.ErrKindCorrupt, &u.path, "invalid userdata body shape %d", shape)
	}

	n, err := u.count()
	if err != nil {
		return nil, err
	}
	ud := vm.NewUserdata(n)
	u.refs.register(ud)
	payload, err := u.r.Bytes(n)
	if err != nil {
		return nil, err
	}
	copy(ud.Data, payload)
	u.path.push("@metatable")
	mv, err := u.valueOf()
	u.path.pop()
	if err != nil {
		return nil, err
	}
	if mv != nil {
		mt, ok := mv.(*vm.Table)
		if !ok {
			return nil, typed(types.ErrKindCorrupt, &u.path, "userdata metatable slot holds a %s", vm.TypeName(mv))
		}
		ud.SetMeta(mt)
	}
	return ud, nil
}

// readSpecial rebuilds an object through its persisted reconstruction
// closure. The reference slot is reserved before the closure is decoded
// and rewritten once the real object exists; graphs that cycle through
// a specially persisted object before it is rebuilt cannot resolve and
// surface as dangling references.
func (u *unpersister) readSpecial(want vm.Kind) (vm.Value, error) {
	id := u.refs.reserve()
	u.path.push("@reconstruct")
	fn, err := u.valueOf()
	u.path.pop()
	if err != nil {
		return nil, err
	}
	if !vm.IsCallable(fn) {
		return nil, typed(types.ErrKindCallback, &u.path,
			"persisted reconstruction value is a %s, not a callable", vm.TypeName(fn))
	}
	var args []vm.Value
	if u.cfg.PassIO {
		args = append(args, vm.Surrogate(u.r))
	}
	res, err := u.s.Call(fn, args...)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindCallback,
			Msg: "reconstruction closure failed", Path: u.path.String(), Err: err}
	}
	if len(res) < 1 {
		return nil, typed(types.ErrKindCallback, &u.path, "reconstruction closure returned nothing")
	}
	obj := res[0]
	if vm.KindOf(obj) != want {
		return nil, typed(types.ErrKindCallback, &u.path,
			"reconstruction closure returned a %s, expected a %s", vm.TypeName(obj), want)
	}
	u.refs.rewrite(id, obj)
	return obj, nil
}
