package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		v    Value
		kind Kind
	}{
		{nil, KindNil},
		{true, KindBool},
		{LightPtr(0xdead), KindLightPtr},
		{3.14, KindNumber},
		{"s", KindString},
		{NewTable(), KindTable},
		{NewUserdata(4), KindUserdata},
		{NewHostFunc("f", nil), KindFunction},
		{&Closure{}, KindFunction},
		{NewThread(), KindThread},
	}
	for _, c := range cases {
		require.Equal(t, c.kind, KindOf(c.v), "value %v", c.v)
	}
	require.Equal(t, KindInvalid, KindOf(int(1)))
}

func TestTableRawAccess(t *testing.T) {
	tb := NewTable()
	tb.RawSet("a", 1.0)
	tb.RawSet(2.0, "two")
	require.Equal(t, 1.0, tb.RawGet("a"))
	require.Equal(t, "two", tb.RawGet(2.0))
	require.Equal(t, 2, tb.Len())

	tb.RawSet("a", nil) // delete
	require.Nil(t, tb.RawGet("a"))
	require.Equal(t, 1, tb.Len())

	require.Panics(t, func() { tb.RawSet(nil, 1.0) })
}

func TestUpvalueOpenClose(t *testing.T) {
	th := NewThread()
	th.Push("zero")
	th.Push("one")

	u := th.FindOrCreateUpval(1)
	require.True(t, u.IsOpen())
	require.Equal(t, "one", u.Get())

	u.Set("changed")
	require.Equal(t, "changed", th.Stack[1])

	th.CloseUpvals(1)
	require.False(t, u.IsOpen())
	require.Equal(t, "changed", u.Get())
	require.Empty(t, th.OpenUpvals())

	// Writes after closing no longer alias the stack.
	u.Set("again")
	require.Equal(t, "changed", th.Stack[1])
}

func TestFindOrCreateUpvalSharing(t *testing.T) {
	th := NewThread()
	th.Push(1.0)
	th.Push(2.0)
	th.Push(3.0)

	a := th.FindOrCreateUpval(2)
	b := th.FindOrCreateUpval(0)
	c := th.FindOrCreateUpval(2)
	require.Same(t, a, c)
	require.NotSame(t, a, b)

	// List stays ordered by descending slot.
	open := th.OpenUpvals()
	require.Len(t, open, 2)
	require.Equal(t, 2, open[0].StackSlot())
	require.Equal(t, 0, open[1].StackSlot())
}

func TestResizeStackPreservesUpvalues(t *testing.T) {
	th := NewThread()
	th.Push("keep")
	u := th.FindOrCreateUpval(0)
	th.ResizeStack(200)
	require.Equal(t, "keep", u.Get())
}

func TestStateCall(t *testing.T) {
	s := New()

	double := NewHostFunc("double", func(_ *State, _ *Closure, args []Value) ([]Value, error) {
		return []Value{args[0].(float64) * 2}, nil
	})
	res, err := s.Call(double, 21.0)
	require.NoError(t, err)
	require.Equal(t, []Value{42.0}, res)

	// Host closures hand the closure to the function for upvalue access.
	counter := NewHostFunc("counter", func(_ *State, cl *Closure, _ []Value) ([]Value, error) {
		n := cl.Upvals[0].Get().(float64) + 1
		cl.Upvals[0].Set(n)
		return []Value{n}, nil
	})
	cl := NewHostClosure(counter, 1)
	cl.Upvals[0] = NewUpvalue(0.0)
	for want := 1.0; want <= 3; want++ {
		res, err := s.Call(cl)
		require.NoError(t, err)
		require.Equal(t, want, res[0])
	}

	// Interpreted closures need an installed interpreter.
	ic := NewClosure(&Proto{})
	_, err = s.Call(ic)
	require.ErrorIs(t, err, ErrNoInterpreter)

	_, err = s.Call("not callable")
	require.Error(t, err)
}
