package persist

import (
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// writeProto emits a prototype body: header scalars, code, constants,
// child prototypes (keyed, so shared children are emitted once),
// upvalue descriptors, then the debug-info flag and payload. Debug
// strings go through the value path so child prototypes sharing a
// source name share its reference.
func (p *persister) writeProto(proto *vm.Proto) error {
	if err := p.w.Int(proto.LineDefined); err != nil {
		return err
	}
	if err := p.w.Int(proto.LastLineDefined); err != nil {
		return err
	}
	if err := p.w.Byte(proto.NumParams); err != nil {
		return err
	}
	if err := p.w.Bool(proto.IsVararg); err != nil {
		return err
	}
	if err := p.w.Byte(proto.MaxStackSize); err != nil {
		return err
	}

	if err := p.w.Size(uint64(len(proto.Code))); err != nil {
		return err
	}
	for _, ins := range proto.Code {
		if err := p.w.U32(ins); err != nil {
			return err
		}
	}

	if err := p.w.Size(uint64(len(proto.Consts))); err != nil {
		return err
	}
	for i, c := range proto.Consts {
		p.path.pushf("@const[%d]", i)
		err := p.value(c)
		p.path.pop()
		if err != nil {
			return err
		}
	}

	if err := p.w.Size(uint64(len(proto.Protos))); err != nil {
		return err
	}
	for i, child := range proto.Protos {
		p.path.pushf("@proto[%d]", i)
		err := p.keyedProto(child)
		p.path.pop()
		if err != nil {
			return err
		}
	}

	if err := p.w.Size(uint64(len(proto.Upvals))); err != nil {
		return err
	}
	for _, ud := range proto.Upvals {
		if err := p.w.Bool(ud.InStack); err != nil {
			return err
		}
		if err := p.w.Byte(ud.Index); err != nil {
			return err
		}
	}

	debug := !p.cfg.NoDebug
	if err := p.w.Bool(debug); err != nil {
		return err
	}
	if !debug {
		return nil
	}
	if err := p.value(proto.Source); err != nil {
		return err
	}
	if err := p.w.Size(uint64(len(proto.LineInfo))); err != nil {
		return err
	}
	for _, ln := range proto.LineInfo {
		if err := p.w.Int(ln); err != nil {
			return err
		}
	}
	if err := p.w.Size(uint64(len(proto.LocVars))); err != nil {
		return err
	}
	for _, lv := range proto.LocVars {
		if err := p.value(lv.Name); err != nil {
			return err
		}
		if err := p.w.Int(lv.StartPC); err != nil {
			return err
		}
		if err := p.w.Int(lv.EndPC); err != nil {
			return err
		}
	}
	for _, ud := range proto.Upvals {
		if err := p.value(ud.Name); err != nil {
			return err
		}
	}
	return nil
}

// readProto mirrors writeProto. The shell is registered before any
// descendant decodes, keeping prototype-level cycles resolvable even
// though well-formed compilers never emit them.
func (u *unpersister) readProto() (*vm.Proto, error) {
	proto := &vm.Proto{}
	u.refs.register(proto)

	var err error
	if proto.LineDefined, err = u.r.Int(); err != nil {
		return nil, err
	}
	if proto.LastLineDefined, err = u.r.Int(); err != nil {
		return nil, err
	}
	if proto.NumParams, err = u.r.Byte(); err != nil {
		return nil, err
	}
	if proto.IsVararg, err = u.r.Bool(); err != nil {
		return nil, err
	}
	if proto.MaxStackSize, err = u.r.Byte(); err != nil {
		return nil, err
	}

	ncode, err := u.count()
	if err != nil {
		return nil, err
	}
	proto.Code = make([]uint32, ncode)
	for i := range proto.Code {
		if proto.Code[i], err = u.r.U32(); err != nil {
			return nil, err
		}
	}

	nconst, err := u.count()
	if err != nil {
		return nil, err
	}
	proto.Consts = make([]vm.Value, nconst)
	for i := range proto.Consts {
		u.path.pushf("@const[%d]", i)
		proto.Consts[i], err = u.valueOf()
		u.path.pop()
		if err != nil {
			return nil, err
		}
	}

	nproto, err := u.count()
	if err != nil {
		return nil, err
	}
	proto.Protos = make([]*vm.Proto, nproto)
	for i := range proto.Protos {
		u.path.pushf("@proto[%d]", i)
		child, cerr := u.decode()
		u.path.pop()
		if cerr != nil {
			return nil, cerr
		}
		cp, ok := child.(*vm.Proto)
		if !ok {
			return nil, typed(types.ErrKindCorrupt, &u.path, "child prototype slot holds a %T", child)
		}
		proto.Protos[i] = cp
	}

	nup, err := u.count()
	if err != nil {
		return nil, err
	}
	proto.Upvals = make([]vm.UpvalDesc, nup)
	for i := range proto.Upvals {
		if proto.Upvals[i].InStack, err = u.r.Bool(); err != nil {
			return nil, err
		}
		if proto.Upvals[i].Index, err = u.r.Byte(); err != nil {
			return nil, err
		}
	}

	debug, err := u.r.Bool()
	if err != nil {
		return nil, err
	}
	if !debug {
		// debug fields stay zero-filled
		return proto, nil
	}
	src, err := u.stringValue("prototype source")
	if err != nil {
		return nil, err
	}
	proto.Source = src
	nline, err := u.count()
	if err != nil {
		return nil, err
	}
	proto.LineInfo = make([]int32, nline)
	for i := range proto.LineInfo {
		if proto.LineInfo[i], err = u.r.Int(); err != nil {
			return nil, err
		}
	}
	nloc, err := u.count()
	if err != nil {
		return nil, err
	}
	proto.LocVars = make([]vm.LocVar, nloc)
	for i := range proto.LocVars {
		if proto.LocVars[i].Name, err = u.stringValue("local variable name"); err != nil {
			return nil, err
		}
		if proto.LocVars[i].StartPC, err = u.r.Int(); err != nil {
			return nil, err
		}
		if proto.LocVars[i].EndPC, err = u.r.Int(); err != nil {
			return nil, err
		}
	}
	for i := range proto.Upvals {
		if proto.Upvals[i].Name, err = u.stringValue("upvalue name"); err != nil {
			return nil, err
		}
	}
	return proto, nil
}

// stringValue decodes a value that must be a string (shared debug
// strings travel through the value path to keep their references).
func (u *unpersister) stringValue(what string) (string, error) {
	v, err := u.valueOf()
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typed(types.ErrKindCorrupt, &u.path, "%s is a %s, not a string", what, vm.TypeName(v))
	}
	return s, nil
}
