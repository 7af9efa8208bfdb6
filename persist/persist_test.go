package persist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/pkg/types"
	"github.com/halvik/cryo/vm"
)

// roundTrip persists v on one VM and unpersists it on a fresh one.
func roundTrip(t *testing.T, v vm.Value) vm.Value {
	t.Helper()
	s := vm.New()
	data, err := Persist(s, Config{}, nil, v)
	require.NoError(t, err)
	s2 := vm.New()
	out, err := Unpersist(s2, Config{}, nil, data)
	require.NoError(t, err)
	return out
}

func TestKindTagCorrespondence(t *testing.T) {
	// The reader compares stream tags against vm kinds numerically
	// (readPermanent); both numberings must stay aligned.
	pairs := []struct {
		kind vm.Kind
		tag  int32
	}{
		{vm.KindNil, format.TagNil},
		{vm.KindBool, format.TagBool},
		{vm.KindLightPtr, format.TagLightPtr},
		{vm.KindNumber, format.TagNumber},
		{vm.KindString, format.TagString},
		{vm.KindTable, format.TagTable},
		{vm.KindUserdata, format.TagUserdata},
		{vm.KindFunction, format.TagFunction},
		{vm.KindProto, format.TagProto},
		{vm.KindUpvalue, format.TagUpvalue},
		{vm.KindThread, format.TagThread},
	}
	for _, p := range pairs {
		require.Equal(t, p.tag, int32(p.kind))
	}
}

func TestFrameFlagCorrespondence(t *testing.T) {
	require.EqualValues(t, format.FrameInterpreted, vm.FrameInterpreted)
	require.EqualValues(t, format.FrameTail, vm.FrameTail)
	require.EqualValues(t, format.FrameYielded, vm.FrameYielded)
	require.EqualValues(t, format.FrameYieldedPCall, vm.FrameYieldedPCall)
	require.EqualValues(t, format.FrameHooked, vm.FrameHooked)
}

func TestRoundTripScalars(t *testing.T) {
	require.Nil(t, roundTrip(t, nil))
	require.Equal(t, true, roundTrip(t, true))
	require.Equal(t, false, roundTrip(t, false))
	require.Equal(t, 3.25, roundTrip(t, 3.25))
	require.Equal(t, vm.LightPtr(0xC0FFEE), roundTrip(t, vm.LightPtr(0xC0FFEE)))
}

func TestRoundTripString(t *testing.T) {
	require.Equal(t, "hello", roundTrip(t, "hello"))
	require.Equal(t, "", roundTrip(t, ""))
	require.Equal(t, "\x00\xff\x80 raw bytes", roundTrip(t, "\x00\xff\x80 raw bytes"))
}

func TestStringInterning(t *testing.T) {
	// The same string twice costs one body and one reference.
	const payload = "a string body that is emitted once and referenced after"
	tb := vm.NewTable()
	tb.RawSet(1.0, payload)
	tb.RawSet(2.0, payload)
	s := vm.New()
	one, err := Persist(s, Config{}, nil, payload)
	require.NoError(t, err)
	both, err := Persist(s, Config{}, nil, tb)
	require.NoError(t, err)
	// Table framing + shape + 2 keys + value + ref + sentinel + meta is
	// far smaller than a second string body would be.
	require.Less(t, len(both), 2*len(one))
}

func TestRoundTripSharedIdentity(t *testing.T) {
	inner := vm.NewTable()
	inner.RawSet("x", 1.0)
	outer := vm.NewTable()
	outer.RawSet("a", inner)
	outer.RawSet("b", inner)

	got := roundTrip(t, outer).(*vm.Table)
	a := got.RawGet("a").(*vm.Table)
	b := got.RawGet("b").(*vm.Table)
	require.Same(t, a, b)
	require.Equal(t, 1.0, a.RawGet("x"))
}

func TestRoundTripCycle(t *testing.T) {
	tb := vm.NewTable()
	tb.RawSet(1.0, 1.0)
	tb.RawSet(2.0, 2.0)
	tb.RawSet(3.0, 3.0)
	tb.RawSet("me", tb)

	got := roundTrip(t, tb).(*vm.Table)
	require.Equal(t, 1.0, got.RawGet(1.0))
	require.Equal(t, 2.0, got.RawGet(2.0))
	require.Equal(t, 3.0, got.RawGet(3.0))
	require.Same(t, got, got.RawGet("me"))
}

func TestRecursionLimit(t *testing.T) {
	root := vm.NewTable()
	cur := root
	for i := 0; i < 64; i++ {
		next := vm.NewTable()
		cur.RawSet("down", next)
		cur = next
	}
	s := vm.New()
	_, err := Persist(s, Config{MaxRec: 16}, nil, root)
	require.ErrorIs(t, err, types.ErrUnsupported)

	// Unbounded by default.
	_, err = Persist(s, Config{}, nil, root)
	require.NoError(t, err)
}

func TestErrorPath(t *testing.T) {
	bad := vm.NewTable()
	meta := vm.NewTable()
	meta.RawSet(DefaultPersistKey, false)
	bad.SetMeta(meta)
	outer := vm.NewTable()
	outer.RawSet("bad", bad)

	s := vm.New()
	_, err := Persist(s, Config{Path: true}, nil, outer)
	require.ErrorIs(t, err, types.ErrForbidden)
	var te *types.Error
	require.ErrorAs(t, err, &te)
	require.Contains(t, te.Path, ".bad")
}

func TestUndumpRejectsGarbage(t *testing.T) {
	s := vm.New()
	_, err := Unpersist(s, Config{}, nil, []byte("definitely not a dump"))
	require.ErrorIs(t, err, types.ErrNotDump)

	_, err = Unpersist(s, Config{}, nil, nil)
	require.Error(t, err)
}

func TestUndumpRejectsTruncatedBody(t *testing.T) {
	s := vm.New()
	data, err := Persist(s, Config{}, nil, "a fairly long string payload")
	require.NoError(t, err)
	_, err = Unpersist(vm.New(), Config{}, nil, data[:len(data)-4])
	require.ErrorIs(t, err, types.ErrIO)
}

func TestPermanentsSubstitution(t *testing.T) {
	fn := vm.NewHostFunc("native", nil)
	fn2 := vm.NewHostFunc("native-rebuilt", nil)

	tb := vm.NewTable()
	tb.RawSet("f", fn)
	tb.RawSet("g", fn) // same object twice: one substitution, one ref

	wperms := vm.NewTable()
	wperms.RawSet(fn, "K")
	s := vm.New()
	data, err := Persist(s, Config{}, wperms, tb)
	require.NoError(t, err)

	rperms := vm.NewTable()
	rperms.RawSet("K", fn2)
	out, err := Unpersist(vm.New(), Config{}, rperms, data)
	require.NoError(t, err)
	got := out.(*vm.Table)
	require.Same(t, fn2, got.RawGet("f"))
	require.Same(t, fn2, got.RawGet("g"))
}

func TestPermanentsTypeMismatch(t *testing.T) {
	fn := vm.NewHostFunc("native", nil)
	wperms := vm.NewTable()
	wperms.RawSet(fn, "K")
	s := vm.New()
	data, err := Persist(s, Config{}, wperms, fn)
	require.NoError(t, err)

	rperms := vm.NewTable()
	rperms.RawSet("K", 42.0)
	_, err = Unpersist(vm.New(), Config{}, rperms, data)
	require.ErrorIs(t, err, types.ErrPerms)
}

func TestPermanentsMissingOnRead(t *testing.T) {
	fn := vm.NewHostFunc("native", nil)
	wperms := vm.NewTable()
	wperms.RawSet(fn, "K")
	s := vm.New()
	data, err := Persist(s, Config{}, wperms, fn)
	require.NoError(t, err)

	_, err = Unpersist(vm.New(), Config{}, vm.NewTable(), data)
	require.ErrorIs(t, err, types.ErrPerms)

	_, err = Unpersist(vm.New(), Config{}, nil, data)
	require.ErrorIs(t, err, types.ErrPerms)
}

func TestHostFunctionWithoutPermsFails(t *testing.T) {
	fn := vm.NewHostFunc("native", nil)
	s := vm.New()
	_, err := Persist(s, Config{}, nil, fn)
	require.ErrorIs(t, err, types.ErrUnsupported)
}
