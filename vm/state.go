package vm

import (
	"errors"
	"fmt"
)

// ExecFunc executes an interpreted closure. The VM model carries no
// interpreter of its own; embedders install one here.
type ExecFunc func(s *State, c *Closure, args []Value) ([]Value, error)

// ErrNoInterpreter is returned by Call when an interpreted closure is
// invoked and no ExecFunc is installed.
var ErrNoInterpreter = errors.New("vm: no interpreter installed")

// State is one VM instance: a main thread, the thread currently
// running, globals, and the interpreter hook.
type State struct {
	Main    *Thread
	Current *Thread
	Globals *Table

	// Exec runs interpreted closures on behalf of Call. Optional.
	Exec ExecFunc
}

// New returns a VM with a fresh main thread.
func New() *State {
	th := NewThread()
	return &State{Main: th, Current: th, Globals: NewTable()}
}

// Call invokes a callable value with args and returns its results.
// Host functions and host closures run directly; interpreted closures
// are delegated to the Exec hook.
func (s *State) Call(fn Value, args ...Value) ([]Value, error) {
	switch f := fn.(type) {
	case *HostFunc:
		return f.Fn(s, nil, args)
	case *Closure:
		if f.IsHost() {
			return f.Host.Fn(s, f, args)
		}
		if s.Exec == nil {
			return nil, ErrNoInterpreter
		}
		return s.Exec(s, f, args)
	default:
		return nil, fmt.Errorf("vm: attempt to call a %s value", TypeName(fn))
	}
}
