package command

import (
	"bytes"
	"io"
)

// Buffer accumulates bytes received from a peer until they form complete lines.
//
// A Buffer belongs to a single connection and is not safe for concurrent use.
// Lines returned by ReadLine alias the buffer's memory but are never written
// to again: the buffer only ever appends past the end of the last line.
type Buffer struct {
	buf     []byte
	maxLine int
}

// NewBuffer returns an empty Buffer that rejects lines of maxLine bytes or more
// without a terminator. maxLine <= 0 selects MaxLineSize.
func NewBuffer(maxLine int) *Buffer {
	if maxLine <= 0 {
		maxLine = MaxLineSize
	}
	return &Buffer{maxLine: maxLine}
}

// MaxLine returns the line size limit of b.
func (b *Buffer) MaxLine() int {
	return b.maxLine
}

// Len returns the number of buffered, unconsumed bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Bytes returns the unconsumed bytes. The slice is only valid until the next
// call that modifies the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Reset discards buffered bytes. Lines already returned stay intact.
func (b *Buffer) Reset() {
	b.buf = nil
}

// Write appends p to the buffer. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Fill performs a single Read from r into the buffer's spare capacity.
//
// At most MaxLine()-Len() bytes are read, so a drained buffer never holds
// more than one maximum-size line. A buffer that is full but ends with CR
// may take one more byte, the LF completing a line of MaxLine()-1 bytes.
// Fill returns ErrLineTooLong when nothing more may be read; callers are
// expected to drain complete lines with ReadLine before filling again.
func (b *Buffer) Fill(r io.Reader) (int, error) {
	room := b.maxLine - len(b.buf)
	if room == 0 && b.endsWithCR() {
		room = 1
	}
	if room <= 0 {
		return 0, ErrLineTooLong
	}

	want := min(room, DefaultBufferSize)
	b.grow(want)

	free := b.buf[len(b.buf):cap(b.buf)]
	if len(free) > room {
		free = free[:room]
	}
	n, err := r.Read(free)
	b.buf = b.buf[:len(b.buf)+n]
	return n, err
}

// grow makes sure n more bytes fit without reallocating inside append.
// A new backing array receives only the unconsumed remainder.
func (b *Buffer) grow(n int) {
	if cap(b.buf)-len(b.buf) >= n {
		return
	}
	size := max(DefaultBufferSize, 2*len(b.buf), len(b.buf)+n)
	fresh := make([]byte, len(b.buf), size)
	copy(fresh, b.buf)
	b.buf = fresh
}

// ReadLine detaches the first complete line, without its CRLF.
//
// The bytes after the terminator stay buffered for the next call. When no
// CRLF is buffered, ReadLine returns ErrNeedMoreData and leaves the buffer
// unchanged, unless the buffer has reached the line size limit, in which
// case it returns an error of kind KindLineTooLong. A full buffer ending
// with CR is still incomplete: its LF may follow.
//
// The returned line has its capacity clipped to its length so that appending
// to it cannot spill into buffered data.
func (b *Buffer) ReadLine() ([]byte, error) {
	pos := indexCRLF(b.buf)
	if pos < 0 {
		if b.tooLong() {
			return nil, ErrLineTooLong
		}
		return nil, ErrNeedMoreData
	}

	line := b.buf[:pos:pos]
	rest := b.buf[pos+len(CRLF):]
	if len(rest) == 0 {
		// Nothing left to keep: drop the backing array instead of appending
		// behind a line the caller may still hold.
		b.buf = nil
	} else {
		b.buf = rest
	}
	return line, nil
}

// tooLong reports whether the buffered bytes, holding no CRLF, can no longer
// become a line within the limit.
func (b *Buffer) tooLong() bool {
	n := len(b.buf)
	return n > b.maxLine || (n == b.maxLine && !b.endsWithCR())
}

func (b *Buffer) endsWithCR() bool {
	return len(b.buf) > 0 && IsCR(b.buf[len(b.buf)-1])
}

// indexCRLF returns the position of the first CR immediately followed by LF.
func indexCRLF(p []byte) int {
	off := 0
	for {
		i := bytes.IndexByte(p[off:], '\n')
		if i < 0 {
			return -1
		}
		lf := off + i
		if lf > 0 && IsCR(p[lf-1]) && IsLF(p[lf]) {
			return lf - 1
		}
		off = lf + 1
	}
}
