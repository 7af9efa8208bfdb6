package cryo

import (
	"io"

	"github.com/halvik/cryo/persist"
	"github.com/halvik/cryo/vm"
)

// DumpOptions configure the writer direction.
type DumpOptions struct {
	// Config tunes the serializer; the zero value is usable.
	Config persist.Config
	// Perms maps live objects to replacement keys. Optional.
	Perms *vm.Table
}

// OpenOptions configure the reader direction.
type OpenOptions struct {
	// Config tunes the deserializer; the zero value is usable.
	Config persist.Config
	// Perms maps replacement keys back to live objects. Required when
	// the dump was written with a permanents table.
	Perms *vm.Table
}

// Persist serializes v into a self-contained byte string.
//
// Example:
//
//	b, err := cryo.Persist(s, t, cryo.DumpOptions{})
func Persist(s *vm.State, v vm.Value, opts DumpOptions) ([]byte, error) {
	return persist.Persist(s, opts.Config, opts.Perms, v)
}

// Unpersist reconstructs the value serialized in data.
func Unpersist(s *vm.State, data []byte, opts OpenOptions) (vm.Value, error) {
	return persist.Unpersist(s, opts.Config, opts.Perms, data)
}

// Dump streams the serialized form of v to w.
func Dump(s *vm.State, v vm.Value, w io.Writer, opts DumpOptions) error {
	return persist.Dump(s, opts.Config, opts.Perms, v, w)
}

// Undump reconstructs a value from the stream r.
func Undump(s *vm.State, r io.Reader, opts OpenOptions) (vm.Value, error) {
	return persist.Undump(s, opts.Config, opts.Perms, r)
}
