package persist

// Reference tables. Ids are dense and allocated from 1 in depth-first
// pre-order; writer and reader therefore agree on which id every
// non-inline value carries without the ids ever appearing on the wire
// at assignment time.

// writerRefs maps object identity to the reference id assigned on first
// encounter. Keys are the values themselves for first-class objects
// (tables, userdata, strings, threads, closures, host functions) and
// raw pointers for prototypes and upvalues — everything Go can hash.
type writerRefs struct {
	ids  map[any]int32
	next int32
}

func newWriterRefs() *writerRefs {
	return &writerRefs{ids: make(map[any]int32), next: 1}
}

// lookup returns the id bound to key, or 0.
func (r *writerRefs) lookup(key any) int32 {
	return r.ids[key]
}

// bind assigns the next id to key. The key must be unbound.
func (r *writerRefs) bind(key any) int32 {
	id := r.next
	r.next++
	r.ids[key] = id
	return id
}

// readerRefs is the dense id → object table built while decoding. Slots
// are filled before the object's descendants are decoded so that cycles
// back into a partially built object resolve to the real thing. Special
// persistence and permanents reserve a slot first and rewrite it once
// the replacement object exists.
type readerRefs struct {
	objs []any
}

// register appends obj and returns its id.
func (r *readerRefs) register(obj any) int32 {
	r.objs = append(r.objs, obj)
	return int32(len(r.objs))
}

// reserve appends an empty slot and returns its id for a later rewrite.
func (r *readerRefs) reserve() int32 {
	return r.register(nil)
}

// rewrite fills a reserved slot.
func (r *readerRefs) rewrite(id int32, obj any) {
	r.objs[id-1] = obj
}

// resolve returns the object at id, or (nil, false) when id was never
// issued. A reserved-but-unfilled slot resolves to (nil, true); the
// caller treats that as a dangling reference.
func (r *readerRefs) resolve(id int32) (any, bool) {
	if id < 1 || int(id) > len(r.objs) {
		return nil, false
	}
	return r.objs[id-1], true
}
