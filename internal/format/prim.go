package format

import (
	"fmt"
	"io"
	"math"
)

// Writer emits the fixed-width scalar encodings of the stream onto an
// io.Writer. All methods report the sink's first refusal; the caller is
// expected to abort on the first error.
type Writer struct {
	w   io.Writer
	buf [8]byte
	n   int64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Count returns the number of bytes emitted so far.
func (w *Writer) Count() int64 { return w.n }

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		return fmt.Errorf("format: write sink: %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("format: write sink: %w", io.ErrShortWrite)
	}
	return nil
}

// Byte emits a single byte.
func (w *Writer) Byte(v byte) error {
	w.buf[0] = v
	return w.write(w.buf[:1])
}

// Bool emits a one-byte 0/1.
func (w *Writer) Bool(v bool) error {
	if v {
		return w.Byte(1)
	}
	return w.Byte(0)
}

// U16 emits a host-order uint16.
func (w *Writer) U16(v uint16) error {
	PutU16(w.buf[:], 0, v)
	return w.write(w.buf[:2])
}

// I16 emits a host-order int16.
func (w *Writer) I16(v int16) error {
	return w.U16(uint16(v))
}

// Int emits the stream's framing integer.
func (w *Writer) Int(v int32) error {
	PutI32(w.buf[:], 0, v)
	return w.write(w.buf[:4])
}

// U32 emits a host-order uint32.
func (w *Writer) U32(v uint32) error {
	PutU32(w.buf[:], 0, v)
	return w.write(w.buf[:4])
}

// Size emits a pointer-sized count.
func (w *Writer) Size(v uint64) error {
	PutU64(w.buf[:], 0, v)
	return w.write(w.buf[:8])
}

// Offset emits a pointer-sized signed offset.
func (w *Writer) Offset(v int64) error {
	return w.Size(uint64(v))
}

// Ptr emits a pointer-sized raw word.
func (w *Writer) Ptr(v uint64) error {
	return w.Size(v)
}

// Number emits one VM-native floating word.
func (w *Writer) Number(v float64) error {
	return w.Size(math.Float64bits(v))
}

// Bytes emits raw bytes verbatim.
func (w *Writer) Bytes(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	return w.write(p)
}

// Reader consumes the fixed-width scalar encodings of the stream from
// an io.Reader. A short source surfaces as ErrTruncated.
type Reader struct {
	r   io.Reader
	buf [8]byte
	n   int64
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Count returns the number of bytes consumed so far.
func (r *Reader) Count() int64 { return r.n }

func (r *Reader) read(n int) ([]byte, error) {
	m, err := io.ReadFull(r.r, r.buf[:n])
	r.n += int64(m)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("format: read source: %w", err)
	}
	return r.buf[:n], nil
}

// Byte consumes a single byte.
func (r *Reader) Byte() (byte, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool consumes a one-byte 0/1.
func (r *Reader) Bool() (bool, error) {
	b, err := r.Byte()
	return b != 0, err
}

// U16 consumes a host-order uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return ReadU16(b, 0), nil
}

// I16 consumes a host-order int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// Int consumes the stream's framing integer.
func (r *Reader) Int() (int32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return ReadI32(b, 0), nil
}

// U32 consumes a host-order uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return ReadU32(b, 0), nil
}

// Size consumes a pointer-sized count.
func (r *Reader) Size() (uint64, error) {
	b, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return ReadU64(b, 0), nil
}

// Offset consumes a pointer-sized signed offset.
func (r *Reader) Offset() (int64, error) {
	v, err := r.Size()
	return int64(v), err
}

// Ptr consumes a pointer-sized raw word.
func (r *Reader) Ptr() (uint64, error) {
	return r.Size()
}

// Number consumes one VM-native floating word.
func (r *Reader) Number() (float64, error) {
	v, err := r.Size()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bytes consumes exactly n raw bytes into a fresh slice.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	p := make([]byte, n)
	m, err := io.ReadFull(r.r, p)
	r.n += int64(m)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("format: read source: %w", err)
	}
	return p, nil
}

// ReadHeader consumes and validates the dump header.
func (r *Reader) ReadHeader() (Header, error) {
	buf := make([]byte, HeaderSize)
	m, err := io.ReadFull(r.r, buf)
	r.n += int64(m)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, ErrTruncated
		}
		return Header{}, fmt.Errorf("format: read source: %w", err)
	}
	return DecodeHeader(buf)
}

// WriteHeader emits the dump header for this build.
func (w *Writer) WriteHeader() error {
	return w.Bytes(EncodeHeader(nil, NewHeader()))
}
