// Package vm models the host virtual machine the cryo persister runs
// against: dynamic values, tables with metatables, function prototypes,
// closures with shared upvalues, and suspended coroutine threads. It is
// the object model and ABI only; bytecode execution is delegated to an
// embedder-installed hook (see State.Exec).
package vm

import (
	"fmt"
	"unsafe"
)

// Value is a dynamic VM value. The concrete types are:
//
//	nil        — the nil value
//	bool       — booleans
//	float64    — numbers
//	string     — immutable byte strings (contents are opaque bytes)
//	LightPtr   — raw pointer-sized words used as identity tokens
//	*Table     — mutable tables
//	*Userdata  — raw payloads with an optional metatable
//	*HostFunc  — native functions
//	*Closure   — host or interpreted closures
//	*Thread    — coroutine threads
type Value any

// LightPtr is a raw pointer-sized word carried as a value. It has no
// referent the VM knows about; it is compared and copied by bit pattern.
type LightPtr uintptr

// Kind enumerates the persistable value kinds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindLightPtr
	KindNumber
	KindString
	KindTable
	KindUserdata
	KindFunction
	KindProto
	KindUpvalue
	KindThread
	KindInvalid
)

var kindNames = [...]string{
	KindNil:      "nil",
	KindBool:     "boolean",
	KindLightPtr: "lightptr",
	KindNumber:   "number",
	KindString:   "string",
	KindTable:    "table",
	KindUserdata: "userdata",
	KindFunction: "function",
	KindProto:    "proto",
	KindUpvalue:  "upvalue",
	KindThread:   "thread",
	KindInvalid:  "invalid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// KindOf classifies a value.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case bool:
		return KindBool
	case LightPtr:
		return KindLightPtr
	case float64:
		return KindNumber
	case string:
		return KindString
	case *Table:
		return KindTable
	case *Userdata:
		return KindUserdata
	case *HostFunc, *Closure:
		return KindFunction
	case *Thread:
		return KindThread
	default:
		return KindInvalid
	}
}

// IsInline reports whether v is one of the trivially small kinds that
// are always emitted inline: a reference would cost as much as the body.
func IsInline(v Value) bool {
	switch KindOf(v) {
	case KindNil, KindBool, KindLightPtr, KindNumber:
		return true
	}
	return false
}

// IsCallable reports whether v can be invoked through State.Call.
func IsCallable(v Value) bool {
	switch v.(type) {
	case *HostFunc, *Closure:
		return true
	}
	return false
}

// Meta returns the metatable of v, or nil when v has none or cannot
// carry one.
func Meta(v Value) *Table {
	switch x := v.(type) {
	case *Table:
		return x.meta
	case *Userdata:
		return x.meta
	}
	return nil
}

// Surrogate wraps the address of an internal host structure (a proto or
// an upvalue) as a LightPtr so it can serve as an identity key in maps
// and permanents tables. The pointee is not reachable through the
// result; it is purely a hashable identity token.
func Surrogate[T any](p *T) LightPtr {
	return LightPtr(uintptr(unsafe.Pointer(p)))
}

// TypeName returns the kind name of v, for error messages.
func TypeName(v Value) string {
	return KindOf(v).String()
}

// CheckKind verifies that v is of kind k.
func CheckKind(v Value, k Kind) error {
	if got := KindOf(v); got != k {
		return fmt.Errorf("vm: expected %s, got %s", k, got)
	}
	return nil
}
