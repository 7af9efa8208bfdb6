// Package scan walks the raw bytes of a dump without reconstructing VM
// objects. It re-implements the framing rules — tags, reference ids,
// permanent indirections, per-kind body shapes — over a byte slice and
// yields a node tree for diagnostics, the CLI and the explorer.
package scan

import (
	"fmt"
	"strconv"

	"github.com/halvik/cryo/internal/buf"
	"github.com/halvik/cryo/internal/format"
)

// Node is one value occurrence in the stream.
type Node struct {
	Tag   int32 // kind tag, or format.TagPermanent
	ID    int32 // reference id assigned at this occurrence; 0 for inline kinds
	Ref   int32 // non-zero when this occurrence is a back-reference
	Off   int   // byte offset of the framing word
	Len   int   // total encoded length, framing included
	Label string
	Kids  []*Node
}

// Result is a fully scanned dump.
type Result struct {
	Header format.Header
	Root   *Node
	MaxID  int32
}

// Scan parses a raw (uncompressed) dump.
func Scan(data []byte) (*Result, error) {
	h, err := format.DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	s := &scanner{data: data, pos: format.HeaderSize, next: 1}
	root, err := s.value()
	if err != nil {
		return nil, err
	}
	return &Result{Header: h, Root: root, MaxID: s.next - 1}, nil
}

type scanner struct {
	data []byte
	pos  int
	next int32
}

func (s *scanner) fail(msg string) error {
	return fmt.Errorf("scan: %s at offset %d", msg, s.pos)
}

func (s *scanner) take(n int) ([]byte, error) {
	b, ok := buf.Slice(s.data, s.pos, n)
	if !ok {
		return nil, s.fail("truncated stream")
	}
	s.pos += n
	return b, nil
}

func (s *scanner) i32() (int32, error) {
	b, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return buf.I32(b), nil
}

func (s *scanner) u32() (uint32, error) {
	b, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return buf.U32(b), nil
}

func (s *scanner) u16() (uint16, error) {
	b, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return buf.U16(b), nil
}

func (s *scanner) u64() (uint64, error) {
	b, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return buf.U64(b), nil
}

func (s *scanner) byte() (byte, error) {
	b, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// size reads a count word and bounds it against the total input length
// so corrupt dumps cannot drive huge loops.
func (s *scanner) size() (int, error) {
	v, err := s.u64()
	if err != nil {
		return 0, err
	}
	if v > uint64(len(s.data)) {
		return 0, s.fail("count exceeds stream size")
	}
	return int(v), nil
}

func (s *scanner) child(n *Node) error {
	k, err := s.value()
	if err != nil {
		return err
	}
	n.Kids = append(n.Kids, k)
	return nil
}

// value scans one framed value.
func (s *scanner) value() (*Node, error) {
	n := &Node{Off: s.pos}
	fw, err := s.i32()
	if err != nil {
		return nil, err
	}
	if fw >= format.RefOffset {
		n.Ref = fw - format.RefOffset
		n.Label = "ref #" + strconv.Itoa(int(n.Ref))
		n.Len = s.pos - n.Off
		return n, nil
	}
	if fw < 0 {
		return nil, s.fail("invalid type tag")
	}
	n.Tag = fw
	if err := s.body(n); err != nil {
		return nil, err
	}
	n.Len = s.pos - n.Off
	return n, nil
}

func (s *scanner) body(n *Node) error {
	switch n.Tag {
	case format.TagNil:
		n.Label = "nil"
	case format.TagBool:
		b, err := s.byte()
		if err != nil {
			return err
		}
		n.Label = "boolean " + strconv.FormatBool(b != 0)
	case format.TagLightPtr:
		p, err := s.u64()
		if err != nil {
			return err
		}
		n.Label = fmt.Sprintf("lightptr 0x%x", p)
	case format.TagNumber:
		v, err := s.u64()
		if err != nil {
			return err
		}
		n.Label = fmt.Sprintf("number %v", mathFloat(v))
	case format.TagPermanent:
		orig, err := s.i32()
		if err != nil {
			return err
		}
		if orig < 0 || orig >= format.TagPermanent {
			return s.fail("invalid original kind in permanent")
		}
		s.assign(n)
		n.Label = "permanent " + format.TagName(orig)
		return s.child(n)
	case format.TagString:
		s.assign(n)
		ln, err := s.size()
		if err != nil {
			return err
		}
		b, err := s.take(ln)
		if err != nil {
			return err
		}
		n.Label = fmt.Sprintf("string(%d) %s", ln, preview(b))
	case format.TagTable:
		s.assign(n)
		return s.table(n)
	case format.TagUserdata:
		s.assign(n)
		return s.userdata(n)
	case format.TagFunction:
		s.assign(n)
		return s.closure(n)
	case format.TagProto:
		s.assign(n)
		return s.proto(n)
	case format.TagUpvalue:
		s.assign(n)
		n.Label = "upvalue"
		return s.child(n)
	case format.TagThread:
		s.assign(n)
		return s.thread(n)
	default:
		return s.fail("unknown type tag " + strconv.Itoa(int(n.Tag)))
	}
	return nil
}

func (s *scanner) assign(n *Node) {
	n.ID = s.next
	s.next++
}

func (s *scanner) table(n *Node) error {
	shape, err := s.byte()
	if err != nil {
		return err
	}
	if shape == format.BodySpecial {
		n.Label = "table (special)"
		return s.child(n)
	}
	if shape != format.BodyLiteral {
		return s.fail("invalid table body shape")
	}
	pairs := 0
	for {
		k, err := s.value()
		if err != nil {
			return err
		}
		if k.Tag == format.TagNil && k.Ref == 0 {
			break
		}
		n.Kids = append(n.Kids, k)
		if err := s.child(n); err != nil {
			return err
		}
		pairs++
	}
	if err := s.child(n); err != nil { // metatable slot
		return err
	}
	n.Label = fmt.Sprintf("table (%d pairs)", pairs)
	return nil
}

func (s *scanner) userdata(n *Node) error {
	shape, err := s.byte()
	if err != nil {
		return err
	}
	if shape == format.BodySpecial {
		n.Label = "userdata (special)"
		return s.child(n)
	}
	if shape != format.BodyLiteral {
		return s.fail("invalid userdata body shape")
	}
	ln, err := s.size()
	if err != nil {
		return err
	}
	if _, err := s.take(ln); err != nil {
		return err
	}
	n.Label = fmt.Sprintf("userdata(%d)", ln)
	return s.child(n) // metatable slot
}

func (s *scanner) closure(n *Node) error {
	sub, err := s.byte()
	if err != nil {
		return err
	}
	nup, err := s.byte()
	if err != nil {
		return err
	}
	switch sub {
	case format.ClosureHost:
		n.Label = fmt.Sprintf("host closure (%d upvalues)", nup)
		if err := s.child(n); err != nil { // the native function
			return err
		}
		for i := 0; i < int(nup); i++ {
			if err := s.child(n); err != nil {
				return err
			}
		}
	case format.ClosureInterpreted:
		n.Label = fmt.Sprintf("closure (%d upvalues)", nup)
		if err := s.child(n); err != nil { // prototype
			return err
		}
		for i := 0; i < int(nup); i++ {
			if err := s.child(n); err != nil {
				return err
			}
		}
	default:
		return s.fail("invalid closure sub-kind")
	}
	return nil
}

func (s *scanner) proto(n *Node) error {
	if _, err := s.take(4 + 4 + 1 + 1 + 1); err != nil { // lines, params, vararg, maxstack
		return err
	}
	ncode, err := s.size()
	if err != nil {
		return err
	}
	if _, err := s.take(4 * ncode); err != nil {
		return err
	}
	nconst, err := s.size()
	if err != nil {
		return err
	}
	for i := 0; i < nconst; i++ {
		if err := s.child(n); err != nil {
			return err
		}
	}
	nproto, err := s.size()
	if err != nil {
		return err
	}
	for i := 0; i < nproto; i++ {
		if err := s.child(n); err != nil {
			return err
		}
	}
	nup, err := s.size()
	if err != nil {
		return err
	}
	if _, err := s.take(2 * nup); err != nil {
		return err
	}
	debug, err := s.byte()
	if err != nil {
		return err
	}
	n.Label = fmt.Sprintf("proto (%d instructions)", ncode)
	if debug == 0 {
		return nil
	}
	if err := s.child(n); err != nil { // source
		return err
	}
	nline, err := s.size()
	if err != nil {
		return err
	}
	if _, err := s.take(4 * nline); err != nil {
		return err
	}
	nloc, err := s.size()
	if err != nil {
		return err
	}
	for i := 0; i < nloc; i++ {
		if err := s.child(n); err != nil { // name
			return err
		}
		if _, err := s.take(8); err != nil { // pc interval
			return err
		}
	}
	for i := 0; i < nup; i++ {
		if err := s.child(n); err != nil { // upvalue name
			return err
		}
	}
	return nil
}

func (s *scanner) thread(n *Node) error {
	if _, err := s.take(1 + 2 + 1); err != nil { // status, ncalls, allowhook
		return err
	}
	if _, err := s.size(); err != nil { // stack allocation
		return err
	}
	top, err := s.size()
	if err != nil {
		return err
	}
	for i := 0; i < top; i++ {
		if err := s.child(n); err != nil {
			return err
		}
	}
	nframes := 0
	more, err := s.byte()
	if err != nil {
		return err
	}
	for more != 0 {
		if err := s.frame(n); err != nil {
			return err
		}
		nframes++
		if more, err = s.byte(); err != nil {
			return err
		}
	}
	nopen := 0
	for {
		off, err := s.u64()
		if err != nil {
			return err
		}
		if off == format.ListSentinel {
			break
		}
		if err := s.child(n); err != nil {
			return err
		}
		nopen++
	}
	n.Label = fmt.Sprintf("thread (%d slots, %d frames, %d open upvalues)", top, nframes, nopen)
	return nil
}

func (s *scanner) frame(n *Node) error {
	if _, err := s.take(8 + 8 + 2); err != nil { // funcoff, topoff, nresults
		return err
	}
	flags, err := s.byte()
	if err != nil {
		return err
	}
	if _, err := s.take(8); err != nil { // extra
		return err
	}
	if flags&format.FrameInterpreted != 0 {
		_, err := s.take(8 + 8) // base, savedpc
		return err
	}
	if _, err := s.byte(); err != nil { // host status
		return err
	}
	if flags&(format.FrameYielded|format.FrameYieldedPCall) != 0 {
		if _, err := s.take(8); err != nil { // ctx
			return err
		}
		return s.child(n) // continuation function
	}
	return nil
}
