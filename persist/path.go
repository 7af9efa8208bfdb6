package persist

import (
	"fmt"
	"strings"

	"github.com/halvik/cryo/vm"
)

// pathTrace records the current position in the object graph as a
// stack of segments. It is consulted only when building error messages,
// and does nothing at all unless enabled.
type pathTrace struct {
	on   bool
	segs []string
}

func (p *pathTrace) push(seg string) {
	if p.on {
		p.segs = append(p.segs, seg)
	}
}

func (p *pathTrace) pushf(f string, args ...any) {
	if p.on {
		p.segs = append(p.segs, fmt.Sprintf(f, args...))
	}
}

func (p *pathTrace) pop() {
	if p.on && len(p.segs) > 0 {
		p.segs = p.segs[:len(p.segs)-1]
	}
}

func (p *pathTrace) String() string {
	if !p.on {
		return ""
	}
	if len(p.segs) == 0 {
		return "root"
	}
	return "root" + strings.Join(p.segs, "")
}

// keySeg renders a table key as a path segment.
func keySeg(k vm.Value) string {
	switch x := k.(type) {
	case string:
		return "." + x
	case float64:
		return fmt.Sprintf("[%v]", x)
	case bool:
		return fmt.Sprintf("[%t]", x)
	default:
		return fmt.Sprintf("[%s]", vm.TypeName(k))
	}
}
