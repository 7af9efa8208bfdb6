// Package types holds the public error taxonomy and stream metadata of
// the cryo library, separated from the implementation packages so
// callers can branch on error intent without importing internals.
package types

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindIO          ErrKind = iota // write sink refused / read source short
	ErrKindFormat                     // malformed header (bad magic, widths, canary)
	ErrKindCorrupt                    // structural corruption (dangling refs, bad tags)
	ErrKindForbidden                  // value explicitly marked non-persistable
	ErrKindUnsupported                // running thread, yielded hook, unknown type
	ErrKindCallback                   // special-persistence callback misbehaved
	ErrKindPerms                      // permanents-table violation
)

// Error is a typed error with an optional underlying cause and the
// object-graph path at which it occurred (when path tracing is on).
type Error struct {
	Kind ErrKind
	Msg  string
	Path string // "" unless the persist call traced paths
	Err  error  // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Path != "" {
		msg += " (at " + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match any typed error of the same kind, so the
// sentinels below work as comparison targets for wrapped instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrNotDump indicates the input lacks a valid dump header.
	ErrNotDump = &Error{Kind: ErrKindFormat, Msg: "not a cryo dump (bad header)"}
	// ErrIncompatible indicates the dump was written with different
	// scalar widths or float layout than this machine uses.
	ErrIncompatible = &Error{Kind: ErrKindFormat, Msg: "dump written on an incompatible platform"}
	// ErrIO indicates the write sink refused bytes or the read source ran short.
	ErrIO = &Error{Kind: ErrKindIO, Msg: "stream i/o failure"}
	// ErrCorrupt indicates non-recoverable structural inconsistency in the stream.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt dump structure"}
	// ErrForbidden indicates a value was marked non-persistable.
	ErrForbidden = &Error{Kind: ErrKindForbidden, Msg: "value forbidden from persistence"}
	// ErrUnsupported indicates a value the engine cannot persist.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported value"}
	// ErrBadCallback indicates a special-persistence callback returned
	// something other than what the protocol requires.
	ErrBadCallback = &Error{Kind: ErrKindCallback, Msg: "invalid special-persistence callback"}
	// ErrPerms indicates a permanents-table violation: a key missing on
	// read, or a type mismatch between write- and read-time resolution.
	ErrPerms = &Error{Kind: ErrKindPerms, Msg: "permanents-table violation"}
)

// -----------------------------------------------------------------------------
// Stream metadata
// -----------------------------------------------------------------------------

// Compression names the file-container compression algorithms.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionS2   Compression = "s2"
)

// DumpInfo is the header-level metadata of a dump file, as reported by
// cryoctl info and pkg/cryo.Info.
type DumpInfo struct {
	Version     int         `json:"version"`
	IntWidth    int         `json:"int_width"`
	SizeWidth   int         `json:"size_width"`
	NumberWidth int         `json:"number_width"`
	Compression Compression `json:"compression"`
	PayloadSize int64       `json:"payload_size"`
	FileSize    int64       `json:"file_size"`
}

// KindStat is the per-kind tally produced by the structural scanner.
type KindStat struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Bytes int64  `json:"bytes"`
}
