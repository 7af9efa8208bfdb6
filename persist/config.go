// Package persist implements the object-graph serializer and
// deserializer: reference-tracked, cycle-safe persistence of arbitrary
// VM values — tables, closures with shared upvalues, prototypes, and
// suspended coroutines — into a self-contained byte stream and back.
package persist

// DefaultPersistKey is the metatable key consulted for the
// special-persistence protocol when Config.PersistKey is empty.
const DefaultPersistKey = "__persist"

// Config carries the knobs of one persist or unpersist call. The zero
// value is usable. Configuration is per-call state, never global, so
// multiple VMs can run persistence concurrently.
type Config struct {
	// NoDebug drops prototype debug info (source names, line info,
	// local-variable intervals) from the stream.
	NoDebug bool

	// Path accumulates a human-readable object-graph path for error
	// messages. Costs allocations on the happy path; off by default.
	Path bool

	// PassIO hands special-persistence callbacks the opaque stream
	// handles as extra arguments.
	PassIO bool

	// PersistKey overrides the metatable key consulted for special
	// persistence. Empty means DefaultPersistKey.
	PersistKey string

	// MaxRec bounds dispatcher recursion depth as a defense against
	// pathological nesting. Zero or negative means unbounded.
	MaxRec int
}

func (c Config) persistKey() string {
	if c.PersistKey == "" {
		return DefaultPersistKey
	}
	return c.PersistKey
}

// maxSaneCount caps counts and sizes decoded from the stream before
// they reach make(). Prevents absurd allocations from corrupt dumps.
const maxSaneCount = 1 << 26
