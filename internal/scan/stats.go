package scan

import (
	"sort"

	"github.com/halvik/cryo/pkg/types"
)

// Stats tallies node counts and byte shares per kind across the tree.
// A node's own bytes exclude its children so the totals add up to the
// root node's length: the dump size minus its header.
func Stats(root *Node) []types.KindStat {
	acc := make(map[string]*types.KindStat)
	var walk func(n *Node)
	walk = func(n *Node) {
		name := n.KindName()
		own := int64(n.Len)
		for _, k := range n.Kids {
			own -= int64(k.Len)
			walk(k)
		}
		st := acc[name]
		if st == nil {
			st = &types.KindStat{Kind: name}
			acc[name] = st
		}
		st.Count++
		st.Bytes += own
	}
	walk(root)

	out := make([]types.KindStat, 0, len(acc))
	for _, st := range acc {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
