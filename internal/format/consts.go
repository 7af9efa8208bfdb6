// Package format houses the low-level constants and codecs for the cryo
// dump stream. The goal is to keep the framing rules in one place and
// independent from the object-graph machinery so higher-level packages
// (the persister, the structural scanner, the CLI) agree byte-for-byte
// on what a stream looks like.
package format

var (
	// Magic is the four-byte signature at the start of every raw dump.
	// Layout:
	//   0x00  'C' 'R' 'Y' 'O'
	Magic = []byte{'C', 'R', 'Y', 'O'}

	// CompressedMagic is the four-byte signature of the compressed file
	// container. The byte after it names the compression algorithm.
	CompressedMagic = []byte{'C', 'R', 'Y', 'Z'}
)

// Kind tags. One framing word per value holds either a kind tag or a
// reference id offset by RefOffset, so tag vs. reference is decided by
// magnitude alone.
const (
	TagNil      int32 = 0
	TagBool     int32 = 1
	TagLightPtr int32 = 2
	TagNumber   int32 = 3
	TagString   int32 = 4
	TagTable    int32 = 5
	TagUserdata int32 = 6
	TagFunction int32 = 7
	TagProto    int32 = 8
	TagUpvalue  int32 = 9
	TagThread   int32 = 10

	// TagPermanent sits between the kind tags and the reference offset.
	// It is emitted when a value is substituted through the permanents
	// table; the original kind tag follows for the reader-side check.
	TagPermanent int32 = 11

	// RefOffset is the first framing word that denotes a reference.
	// A framing word w >= RefOffset refers to reference id w-RefOffset.
	RefOffset int32 = 12
)

const (
	// Version is the stream format version recorded in the header.
	Version = 1

	// HeaderSize is the byte length of the dump header:
	// magic(4) + version(1) + int width(1) + size width(1) +
	// number width(1) + canary number(8).
	HeaderSize = 16

	// IntWidth, SizeWidth and NumberWidth are the widths of the three
	// scalar encodings used by the stream. They are recorded in the
	// header so readers reject payloads written with other layouts.
	IntWidth    = 4
	SizeWidth   = 8
	NumberWidth = 8

	// Canary is written to and verified from every header. A reader
	// whose float decoding disagrees with the writer's will not see
	// this exact value back.
	Canary = 370.5

	// ListSentinel terminates the open-upvalue list of a thread body.
	ListSentinel = ^uint64(0)
)

// Closure sub-kinds, the first body byte of a function value.
const (
	ClosureHost        = 0
	ClosureInterpreted = 1
)

// Table and userdata body shapes, the first body byte.
const (
	BodyLiteral = 0
	BodySpecial = 1
)

// Call-info frame flag bits as they appear in the stream. The vm
// package's FrameFlags use the same numbering.
const (
	FrameInterpreted  = 1 << 0
	FrameTail         = 1 << 1
	FrameYielded      = 1 << 2
	FrameYieldedPCall = 1 << 3
	FrameHooked       = 1 << 4
)

// Compression algorithm bytes in the compressed file container.
const (
	CompressNone = 0
	CompressZstd = 1
	CompressS2   = 2
)

// TagName returns a printable name for a kind tag. Reference framing
// words are not kind tags and yield "ref".
func TagName(tag int32) string {
	switch tag {
	case TagNil:
		return "nil"
	case TagBool:
		return "boolean"
	case TagLightPtr:
		return "lightptr"
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagTable:
		return "table"
	case TagUserdata:
		return "userdata"
	case TagFunction:
		return "function"
	case TagProto:
		return "proto"
	case TagUpvalue:
		return "upvalue"
	case TagThread:
		return "thread"
	case TagPermanent:
		return "permanent"
	}
	if tag >= RefOffset {
		return "ref"
	}
	return "invalid"
}
