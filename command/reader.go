package command

import (
	"errors"
	"io"
)

// Reader decodes commands from a byte stream.
//
// It drains every complete line already buffered before reading again, so a
// single network read carrying several pipelined commands costs one Read.
type Reader struct {
	r   io.Reader
	buf *Buffer
}

// NewReader returns a Reader that fills buf from r.
// buf may already hold bytes; a nil buf gets a fresh Buffer with MaxLineSize.
func NewReader(r io.Reader, buf *Buffer) *Reader {
	if buf == nil {
		buf = NewBuffer(MaxLineSize)
	}
	return &Reader{r: r, buf: buf}
}

// Buffer returns the underlying accumulation buffer.
func (r *Reader) Buffer() *Buffer {
	return r.buf
}

// ReadCommand returns the next command.
//
// Decode errors for a single line are returned as *Error and the Reader
// stays usable, except for KindLineTooLong. When the stream ends, ReadCommand
// returns io.EOF if the buffer is empty and io.ErrUnexpectedEOF if a partial
// line was left. Other read errors are returned as is.
func (r *Reader) ReadCommand() (Command, error) {
	for {
		cmd, err := Decode(r.buf)
		if !IsNeedMoreData(err) {
			return cmd, err
		}

		n, err := r.buf.Fill(r.r)
		if n > 0 && err == nil {
			continue
		}
		if err == nil {
			// Zero bytes without an error: the reader made no progress.
			return nil, io.ErrNoProgress
		}
		if errors.Is(err, io.EOF) {
			if n > 0 {
				// Decode what arrived together with EOF first.
				if cmd, derr := Decode(r.buf); !IsNeedMoreData(derr) {
					return cmd, derr
				}
			}
			if r.buf.Len() > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, io.EOF
		}
		return nil, err
	}
}
