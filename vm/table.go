package vm

// Table is a mutable mapping from non-nil values to non-nil values,
// with an optional metatable. Iteration order is unspecified, matching
// the host language's pairs traversal.
type Table struct {
	m    map[Value]Value
	meta *Table
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{m: make(map[Value]Value)}
}

// RawGet returns the value stored under k, or nil. No metatable lookup.
func (t *Table) RawGet(k Value) Value {
	if k == nil {
		return nil
	}
	return t.m[k]
}

// RawSet stores v under k without metatable dispatch. Storing nil
// removes the key. A nil key panics, mirroring the host VM's contract.
func (t *Table) RawSet(k, v Value) {
	if k == nil {
		panic("vm: table index is nil")
	}
	if v == nil {
		delete(t.m, k)
		return
	}
	t.m[k] = v
}

// Len returns the number of stored pairs.
func (t *Table) Len() int { return len(t.m) }

// Range calls fn for every pair until fn returns false. The order is
// unspecified and may differ between runs.
func (t *Table) Range(fn func(k, v Value) bool) {
	for k, v := range t.m {
		if !fn(k, v) {
			return
		}
	}
}

// Meta returns the table's metatable, or nil.
func (t *Table) Meta() *Table { return t.meta }

// SetMeta installs (or clears) the table's metatable.
func (t *Table) SetMeta(m *Table) { t.meta = m }

// Userdata is a raw byte payload with an optional metatable. The VM
// attaches no interpretation to the payload.
type Userdata struct {
	Data []byte
	meta *Table
}

// NewUserdata allocates a userdata with a zeroed payload of size bytes.
func NewUserdata(size int) *Userdata {
	return &Userdata{Data: make([]byte, size)}
}

// Meta returns the userdata's metatable, or nil.
func (u *Userdata) Meta() *Table { return u.meta }

// SetMeta installs (or clears) the userdata's metatable.
func (u *Userdata) SetMeta(m *Table) { u.meta = m }
