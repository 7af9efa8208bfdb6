package persist

import (
	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// persister is the writer-side state of one persist call. It lives for
// exactly one top-level value.
type persister struct {
	s     *vm.State
	cfg   Config
	w     *format.Writer
	perms *vm.Table // object -> replacement key, may be nil
	refs  *writerRefs
	path  pathTrace
	depth int
}

func (p *persister) enter() error {
	p.depth++
	if p.cfg.MaxRec > 0 && p.depth > p.cfg.MaxRec {
		return typed(types.ErrKindUnsupported, &p.path, "object graph exceeds recursion limit (%d)", p.cfg.MaxRec)
	}
	return nil
}

func (p *persister) leave() { p.depth-- }

// value writes one value: tag plus body for the trivially small kinds,
// the keyed protocol for everything that carries identity.
func (p *persister) value(v vm.Value) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	switch x := v.(type) {
	case nil:
		return p.w.Int(format.TagNil)
	case bool:
		if err := p.w.Int(format.TagBool); err != nil {
			return err
		}
		return p.w.Bool(x)
	case vm.LightPtr:
		if err := p.w.Int(format.TagLightPtr); err != nil {
			return err
		}
		return p.w.Ptr(uint64(x))
	case float64:
		if err := p.w.Int(format.TagNumber); err != nil {
			return err
		}
		return p.w.Number(x)
	case string:
		return p.keyed(x, x, format.TagString, func() error {
			if err := p.w.Size(uint64(len(x))); err != nil {
				return err
			}
			return p.w.Bytes([]byte(x))
		})
	case *vm.Table:
		return p.keyed(x, x, format.TagTable, func() error { return p.writeTable(x) })
	case *vm.Userdata:
		return p.keyed(x, x, format.TagUserdata, func() error { return p.writeUserdata(x) })
	case *vm.HostFunc:
		return p.keyed(x, x, format.TagFunction, func() error {
			return typed(types.ErrKindUnsupported, &p.path,
				"host function %q is not in the permanents table", x.Name)
		})
	case *vm.Closure:
		return p.keyed(x, x, format.TagFunction, func() error { return p.writeClosure(x) })
	case *vm.Thread:
		return p.keyed(x, x, format.TagThread, func() error { return p.writeThread(x) })
	default:
		return typed(types.ErrKindUnsupported, &p.path, "cannot persist a %T", v)
	}
}

// keyed runs the generalized identity protocol: emit a reference when
// the key was seen before; otherwise bind a fresh id, try the
// permanents substitution, and only then fall through to the body.
// The id is bound before perms recursion so graphs referencing the
// same permanent several times share one object on read.
func (p *persister) keyed(key any, permKey vm.Value, tag int32, body func() error) error {
	if id := p.refs.lookup(key); id != 0 {
		return p.w.Int(format.RefOffset + id)
	}
	p.refs.bind(key)
	if p.perms != nil && permKey != nil {
		if repl := p.perms.RawGet(permKey); repl != nil {
			if err := p.w.Int(format.TagPermanent); err != nil {
				return err
			}
			if err := p.w.Int(tag); err != nil {
				return err
			}
			return p.value(repl)
		}
	}
	if err := p.w.Int(tag); err != nil {
		return err
	}
	return body()
}

// keyedProto persists a prototype through the keyed path. Prototypes
// are not first-class values, so their identity key is the pointer and
// their permanents key is a light-pointer surrogate.
func (p *persister) keyedProto(proto *vm.Proto) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	return p.keyed(proto, vm.Surrogate(proto), format.TagProto, func() error {
		return p.writeProto(proto)
	})
}

// keyedUpval persists an upvalue through the keyed path under the
// upvalue's runtime identity, so closures sharing it share a reference
// id. The first occurrence carries the upvalue's current value.
func (p *persister) keyedUpval(u *vm.Upvalue) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	return p.keyed(u, vm.Surrogate(u), format.TagUpvalue, func() error {
		return p.value(u.Get())
	})
}
