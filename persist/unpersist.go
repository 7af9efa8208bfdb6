package persist

import (
	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// unpersister is the reader-side state of one unpersist call.
type unpersister struct {
	s     *vm.State
	cfg   Config
	r     *format.Reader
	perms *vm.Table // replacement key -> object, may be nil
	refs  readerRefs
	path  pathTrace
	depth int
}

func (u *unpersister) enter() error {
	u.depth++
	if u.cfg.MaxRec > 0 && u.depth > u.cfg.MaxRec {
		return typed(types.ErrKindUnsupported, &u.path, "dump exceeds recursion limit (%d)", u.cfg.MaxRec)
	}
	return nil
}

func (u *unpersister) leave() { u.depth-- }

// decode consumes one framing word and returns the decoded object:
// either a vm.Value or, for upvalue entries, the internal record. The
// reference case resolves through the id table; a reserved slot that
// was never rewritten is a dangling reference.
func (u *unpersister) decode() (any, error) {
	if err := u.enter(); err != nil {
		return nil, err
	}
	defer u.leave()

	fw, err := u.r.Int()
	if err != nil {
		return nil, err
	}
	if fw >= format.RefOffset {
		id := fw - format.RefOffset
		obj, ok := u.refs.resolve(id)
		if !ok {
			return nil, typed(types.ErrKindCorrupt, &u.path, "reference to unknown id %d", id)
		}
		if obj == nil {
			return nil, typed(types.ErrKindCorrupt, &u.path, "dangling reference to id %d", id)
		}
		return obj, nil
	}

	switch fw {
	case format.TagNil:
		return nil, nil
	case format.TagBool:
		return u.r.Bool()
	case format.TagLightPtr:
		p, err := u.r.Ptr()
		if err != nil {
			return nil, err
		}
		return vm.LightPtr(p), nil
	case format.TagNumber:
		return u.r.Number()
	case format.TagString:
		n, err := u.count()
		if err != nil {
			return nil, err
		}
		b, err := u.r.Bytes(n)
		if err != nil {
			return nil, err
		}
		s := string(b)
		u.refs.register(s)
		return s, nil
	case format.TagTable:
		return u.readTable()
	case format.TagUserdata:
		return u.readUserdata()
	case format.TagFunction:
		return u.readClosure()
	case format.TagProto:
		return u.readProto()
	case format.TagUpvalue:
		return u.readUpval()
	case format.TagThread:
		return u.readThread()
	case format.TagPermanent:
		return u.readPermanent()
	}
	return nil, typed(types.ErrKindCorrupt, &u.path, "unknown type tag %d in stream", fw)
}

// valueOf decodes one value and rejects reader-internal objects that
// must never appear in value position.
func (u *unpersister) valueOf() (vm.Value, error) {
	obj, err := u.decode()
	if err != nil {
		return nil, err
	}
	if _, ok := obj.(*upvalRecord); ok {
		return nil, typed(types.ErrKindCorrupt, &u.path, "upvalue reference in value position")
	}
	return obj, nil
}

// readPermanent resolves a permanents substitution: reserve the id,
// decode the replacement key, look it up, and type-check the result
// against the kind recorded at write time.
func (u *unpersister) readPermanent() (vm.Value, error) {
	origTag, err := u.r.Int()
	if err != nil {
		return nil, err
	}
	if origTag < 0 || origTag >= format.TagPermanent {
		return nil, typed(types.ErrKindCorrupt, &u.path, "invalid original kind %d in permanent", origTag)
	}
	id := u.refs.reserve()
	u.path.push("@permkey")
	key, err := u.valueOf()
	u.path.pop()
	if err != nil {
		return nil, err
	}
	if u.perms == nil {
		return nil, typed(types.ErrKindPerms, &u.path, "stream carries permanents but no permanents table was given")
	}
	obj := u.perms.RawGet(key)
	if obj == nil {
		return nil, typed(types.ErrKindPerms, &u.path, "permanent key not found in permanents table")
	}
	if got := vm.KindOf(obj); got != vm.Kind(origTag) {
		return nil, typed(types.ErrKindPerms, &u.path,
			"permanent resolved to a %s, expected a %s", got, vm.Kind(origTag))
	}
	u.refs.rewrite(id, obj)
	return obj, nil
}

// count reads a size word destined for an allocation and bounds it.
func (u *unpersister) count() (int, error) {
	n, err := u.r.Size()
	if err != nil {
		return 0, err
	}
	if n > maxSaneCount {
		return 0, typed(types.ErrKindCorrupt, &u.path, "count %d exceeds sanity limit", n)
	}
	return int(n), nil
}
