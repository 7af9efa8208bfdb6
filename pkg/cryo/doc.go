// Package cryo is the public face of the persistence engine: it dumps a
// live VM value graph — tables with cycles, closures with shared
// upvalues, suspended coroutines — into a self-contained byte string
// and reconstructs a semantically equivalent graph later, preserving
// object identity within the dump.
//
// The heavy lifting lives in the persist package; this package adds the
// file container (optional compression, durable writes, memory-mapped
// reads) and header-level inspection.
package cryo
