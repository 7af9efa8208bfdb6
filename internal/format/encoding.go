package format

import "encoding/binary"

// Binary encoding utilities for host-order scalars.
//
// The dump stream deliberately performs no endianness translation: a
// dump is read back on the machine family that wrote it, and the header
// widths plus the canary number reject everything else. All helpers
// therefore use the native byte order.

// PutU16 writes a uint16 to the buffer at the specified offset in host order.
func PutU16(b []byte, off int, v uint16) {
	binary.NativeEndian.PutUint16(b[off:off+2], v)
}

// PutU32 writes a uint32 to the buffer at the specified offset in host order.
func PutU32(b []byte, off int, v uint32) {
	binary.NativeEndian.PutUint32(b[off:off+4], v)
}

// PutI32 writes an int32 to the buffer at the specified offset in host order.
func PutI32(b []byte, off int, v int32) {
	binary.NativeEndian.PutUint32(b[off:off+4], uint32(v))
}

// PutU64 writes a uint64 to the buffer at the specified offset in host order.
func PutU64(b []byte, off int, v uint64) {
	binary.NativeEndian.PutUint64(b[off:off+8], v)
}

// ReadU16 reads a uint16 from the buffer at the specified offset in host order.
func ReadU16(b []byte, off int) uint16 {
	return binary.NativeEndian.Uint16(b[off : off+2])
}

// ReadU32 reads a uint32 from the buffer at the specified offset in host order.
func ReadU32(b []byte, off int) uint32 {
	return binary.NativeEndian.Uint32(b[off : off+4])
}

// ReadI32 reads an int32 from the buffer at the specified offset in host order.
func ReadI32(b []byte, off int) int32 {
	return int32(binary.NativeEndian.Uint32(b[off : off+4]))
}

// ReadU64 reads a uint64 from the buffer at the specified offset in host order.
func ReadU64(b []byte, off int) uint64 {
	return binary.NativeEndian.Uint64(b[off : off+8])
}
