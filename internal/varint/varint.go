// Package varint reads and writes unsigned LEB128 integers and delta-coded
// id lists, the primitives of the persisted n-gram dictionary format.
package varint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrTruncated is returned when the stream ends inside a value.
	ErrTruncated = errors.New("varint: truncated value")
	// ErrOverflow is returned for encodings longer than 64 bits.
	ErrOverflow = errors.New("varint: value overflows uint64")
	// ErrUnsorted is returned when a delta list is fed a decreasing id.
	ErrUnsorted = errors.New("varint: ids not in ascending order")
)

// MaxLen is the longest encoding of a uint64.
const MaxLen = binary.MaxVarintLen64

// Append appends the encoding of v to buf.
func Append(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

// Writer buffers encoded values and flushes them to an io.Writer.
type Writer struct {
	w   io.Writer
	buf []byte
	n   int64
	err error
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 4096)}
}

// Uint writes v.
func (w *Writer) Uint(v uint64) {
	if w.err != nil {
		return
	}
	w.buf = Append(w.buf, v)
	if len(w.buf) >= 4096-MaxLen {
		w.Flush()
	}
}

// Flush writes any buffered bytes and returns the first error seen.
func (w *Writer) Flush() error {
	if w.err != nil || len(w.buf) == 0 {
		return w.err
	}
	n, err := w.w.Write(w.buf)
	w.n += int64(n)
	w.buf = w.buf[:0]
	if err != nil {
		w.err = err
	}
	return w.err
}

// Written returns the number of bytes flushed so far.
func (w *Writer) Written() int64 { return w.n }

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

// Delta encodes a list of ids as successive differences. The zero value
// starts at 0, matching the on-disk convention.
type Delta struct {
	w    *Writer
	last uint64
	err  error
}

// NewDelta starts a delta-coded list on w. The caller writes the count first.
func NewDelta(w *Writer) *Delta { return &Delta{w: w} }

// Next writes id as a delta from the previous id.
func (d *Delta) Next(id uint64) {
	if id < d.last && d.err == nil {
		d.err = fmt.Errorf("%w: %d after %d", ErrUnsorted, id, d.last)
	}
	d.w.Uint(id - d.last)
	d.last = id
}

// Err reports an ordering violation seen by Next.
func (d *Delta) Err() error { return d.err }

// Reader decodes values from an in-memory buffer.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// Uint decodes the next value.
func (r *Reader) Uint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	switch {
	case n == 0:
		return 0, fmt.Errorf("%w at offset %d", ErrTruncated, r.off)
	case n < 0:
		return 0, fmt.Errorf("%w at offset %d", ErrOverflow, r.off)
	}
	r.off += n
	return v, nil
}

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Done reports whether the whole buffer has been consumed.
func (r *Reader) Done() bool { return r.off == len(r.data) }

// Undelta turns a stream of deltas back into absolute ids.
type Undelta struct {
	r    *Reader
	last uint64
}

// NewUndelta starts decoding a delta-coded list from r.
func NewUndelta(r *Reader) *Undelta { return &Undelta{r: r} }

// Next decodes the next absolute id.
func (u *Undelta) Next() (uint64, error) {
	d, err := u.r.Uint()
	if err != nil {
		return 0, err
	}
	next := u.last + d
	if next < u.last {
		return 0, fmt.Errorf("%w: delta %d after %d", ErrOverflow, d, u.last)
	}
	u.last = next
	return u.last, nil
}
