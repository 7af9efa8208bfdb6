package scan

import (
	"math"
	"strconv"
	"unicode"

	"github.com/halvik/cryo/internal/format"
)

func mathFloat(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// preview renders the front of a string payload for labels, quoting
// printable text and falling back to the marker "<binary>" otherwise.
const previewLen = 24

func preview(b []byte) string {
	trunc := false
	if len(b) > previewLen {
		b = b[:previewLen]
		trunc = true
	}
	printable := true
	for _, c := range b {
		if c >= 0x80 || (!unicode.IsPrint(rune(c)) && c != ' ') {
			printable = false
			break
		}
	}
	if !printable {
		return "<binary>"
	}
	s := strconv.Quote(string(b))
	if trunc {
		s += "…"
	}
	return s
}

// KindName names a node for display: the kind tag, or "ref" for
// back-references.
func (n *Node) KindName() string {
	if n.Ref != 0 {
		return "ref"
	}
	return format.TagName(n.Tag)
}
