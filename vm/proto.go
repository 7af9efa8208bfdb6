package vm

// UpvalDesc describes one upvalue slot of a prototype: whether the
// upvalue captures a stack slot of the enclosing function (InStack) or
// refers to one of the enclosing function's own upvalues, plus the
// index in the respective space. Name is debug information and may be
// empty.
type UpvalDesc struct {
	InStack bool
	Index   uint8
	Name    string
}

// LocVar is the debug-info record of one local variable: the
// instruction interval during which the variable is live.
type LocVar struct {
	Name    string
	StartPC int32
	EndPC   int32
}

// Proto is a compiled function body. Code is opaque to this package;
// the persister copies it verbatim and the interpreter hook consumes it.
type Proto struct {
	LineDefined     int32
	LastLineDefined int32
	NumParams       uint8
	IsVararg        bool
	MaxStackSize    uint8

	Code   []uint32
	Consts []Value
	Protos []*Proto
	Upvals []UpvalDesc

	// Debug info. All zero when the prototype was loaded without it.
	Source   string
	LineInfo []int32
	LocVars  []LocVar
}

// NewClosure wraps p in a fresh interpreted closure with unbound
// (nil) upvalue slots sized from the prototype's descriptor count.
func NewClosure(p *Proto) *Closure {
	return &Closure{Proto: p, Upvals: make([]*Upvalue, len(p.Upvals))}
}
