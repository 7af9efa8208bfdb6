package format

import "errors"

var (
	// ErrSignatureMismatch indicates the stream lacked the dump magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the source lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated stream")
	// ErrWidthMismatch indicates the header records scalar widths other than ours.
	ErrWidthMismatch = errors.New("format: incompatible scalar widths")
	// ErrCanary indicates the header canary number did not decode to the
	// expected value, meaning the writer used a different float layout.
	ErrCanary = errors.New("format: number encoding mismatch")
	// ErrVersion indicates an unknown stream format version.
	ErrVersion = errors.New("format: unsupported stream version")
	// ErrBadTag indicates a framing word that is neither a known kind
	// tag nor a reference.
	ErrBadTag = errors.New("format: invalid type tag")

	// ErrSanityLimit indicates a parsed count or size exceeded sanity
	// limits. This prevents excessive allocations from malformed dumps.
	ErrSanityLimit = errors.New("format: value exceeds sanity limit")
)
