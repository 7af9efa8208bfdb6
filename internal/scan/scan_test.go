package scan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/persist"
	"github.com/halvik/cryo/vm"
)

// richDump produces a dump exercising every kind the scanner must walk.
func richDump(t *testing.T) []byte {
	t.Helper()

	proto := &vm.Proto{
		MaxStackSize: 2,
		Code:         []uint32{1, 2, 3},
		Consts:       []vm.Value{1.0, "const"},
		Upvals:       []vm.UpvalDesc{{InStack: true, Index: 0, Name: "x"}},
		Source:       "@scan.lua",
		LineInfo:     []int32{1, 1, 2},
	}
	cl := vm.NewClosure(proto)
	th := vm.NewThread()
	th.Push(cl)
	th.Push(2.5)
	cl.Upvals[0] = th.FindOrCreateUpval(1)
	th.PushFrame(vm.Frame{
		FuncOff: 0, TopOff: 2, NResults: -1,
		Flags: vm.FrameInterpreted, BaseOff: 1, SavedPC: 1,
	})
	th.Status = vm.StatusYield

	udMeta := vm.NewTable()
	udMeta.RawSet(persist.DefaultPersistKey, true)
	ud := vm.NewUserdata(3)
	copy(ud.Data, []byte{9, 8, 7})
	ud.SetMeta(udMeta)

	root := vm.NewTable()
	root.RawSet("bool", true)
	root.RawSet("num", 3.5)
	root.RawSet("str", "payload")
	root.RawSet("ptr", vm.LightPtr(0xBEEF))
	root.RawSet("co", th)
	root.RawSet("ud", ud)
	root.RawSet("self", root)

	s := vm.New()
	data, err := persist.Persist(s, persist.Config{}, nil, root)
	require.NoError(t, err)
	return data
}

func TestScanRichDump(t *testing.T) {
	data := richDump(t)
	res, err := Scan(data)
	require.NoError(t, err)
	require.NotNil(t, res.Root)
	require.Equal(t, byte(format.Version), res.Header.Version)
	require.Greater(t, res.MaxID, int32(4))

	// The root node spans the whole payload.
	require.Equal(t, format.HeaderSize, res.Root.Off)
	require.Equal(t, len(data)-format.HeaderSize, res.Root.Len)
	require.Equal(t, "table", res.Root.KindName())
}

func TestScanStatsAccountEveryByte(t *testing.T) {
	data := richDump(t)
	res, err := Scan(data)
	require.NoError(t, err)

	stats := Stats(res.Root)
	require.NotEmpty(t, stats)
	var total int64
	seen := map[string]bool{}
	for _, st := range stats {
		total += st.Bytes
		seen[st.Kind] = true
	}
	require.Equal(t, int64(res.Root.Len), total)
	for _, kind := range []string{"table", "thread", "proto", "userdata", "string", "ref"} {
		require.True(t, seen[kind], "missing kind %s", kind)
	}
}

func TestScanPermanentDump(t *testing.T) {
	fn := vm.NewHostFunc("native", nil)
	wperms := vm.NewTable()
	wperms.RawSet(fn, "K")
	tb := vm.NewTable()
	tb.RawSet("f", fn)

	s := vm.New()
	data, err := persist.Persist(s, persist.Config{}, wperms, tb)
	require.NoError(t, err)

	res, err := Scan(data)
	require.NoError(t, err)

	var foundPermanent bool
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Tag == format.TagPermanent && n.Ref == 0 {
			foundPermanent = true
		}
		for _, k := range n.Kids {
			walk(k)
		}
	}
	walk(res.Root)
	require.True(t, foundPermanent)
}

func TestScanRejectsTruncation(t *testing.T) {
	data := richDump(t)
	_, err := Scan(data[:len(data)-3])
	require.Error(t, err)
}

func TestScanRejectsBadTag(t *testing.T) {
	s := vm.New()
	data, err := persist.Persist(s, persist.Config{}, nil, true)
	require.NoError(t, err)
	// Corrupt the framing word past the header.
	format.PutI32(data, format.HeaderSize, -5)
	_, err = Scan(data)
	require.Error(t, err)
}
