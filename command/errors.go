package command

import (
	"errors"
	"strconv"
)

// Kind classifies a decode failure.
type Kind uint8

const (
	// KindNeedMoreData means no complete line is buffered yet.
	// The buffer is left untouched; append more bytes and retry.
	KindNeedMoreData Kind = iota + 1

	// KindLineTooLong means the buffer reached the maximum line size without a CRLF.
	// The peer is assumed broken or malicious and the connection must be closed.
	KindLineTooLong

	// KindInvalidCmdLength means the verb is not 3 or 4 bytes long.
	KindInvalidCmdLength

	// KindMissingArgument means a verb that requires an argument was sent without a separator.
	KindMissingArgument

	// KindEmptyArgument means the separator was sent but nothing follows it.
	KindEmptyArgument

	// KindUnexpectedData means the line carries data the verb does not accept.
	KindUnexpectedData

	// KindMissingHostNumber means a PORT argument has fewer than four host fields.
	KindMissingHostNumber

	// KindMissingPortNumber means a PORT argument has the host fields but not both port fields.
	KindMissingPortNumber

	// KindInvalidNumber means a numeric field is empty, has non-digit bytes or is out of range.
	KindInvalidNumber

	// KindInvalidTypeCode means TYPE named a representation type outside A, E, I and L.
	KindInvalidTypeCode

	// KindInvalidFormCode means TYPE named a format control outside N, T and C.
	KindInvalidFormCode

	// KindInvalidUTF8 means an argument that must be text is not valid UTF-8.
	KindInvalidUTF8
)

var kindNames = [...]string{
	KindNeedMoreData:      "need more data",
	KindLineTooLong:       "command line too long",
	KindInvalidCmdLength:  "invalid command length",
	KindMissingArgument:   "missing argument",
	KindEmptyArgument:     "empty argument",
	KindUnexpectedData:    "unexpected data",
	KindMissingHostNumber: "missing host number",
	KindMissingPortNumber: "missing port number",
	KindInvalidNumber:     "invalid number",
	KindInvalidTypeCode:   "invalid type code",
	KindInvalidFormCode:   "invalid form code",
	KindInvalidUTF8:       "invalid utf-8",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Error is returned for every malformed or incomplete command line.
//
// Connection handling depends on the kind:
//   - KindNeedMoreData: read more bytes and decode again
//   - KindLineTooLong: CLOSE the connection
//   - anything else: reply with a protocol error, the connection stays usable
type Error struct {
	Kind Kind

	// Verb is the decoded verb when the failure happened after splitting the line.
	// Zero for extraction and verb-length failures.
	Verb Verb

	// Offset is the position of the first invalid byte within the argument.
	// Only meaningful for KindInvalidUTF8.
	Offset int
}

// Sentinels for errors.Is. Matching is by kind, not identity.
var (
	ErrNeedMoreData = &Error{Kind: KindNeedMoreData}
	ErrLineTooLong  = &Error{Kind: KindLineTooLong}
)

func (e *Error) Error() string {
	msg := "ftp: " + e.Kind.String()
	if !e.Verb.IsZero() {
		msg += " in " + e.Verb.String()
	}
	if e.Kind == KindInvalidUTF8 {
		msg += " at offset " + strconv.Itoa(e.Offset)
	}
	return msg
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// ShouldCloseConnection returns true only for KindLineTooLong.
func (e *Error) ShouldCloseConnection() bool {
	return e.Kind == KindLineTooLong
}

// Temporary returns true when decoding may succeed once more bytes arrive.
func (e *Error) Temporary() bool {
	return e.Kind == KindNeedMoreData
}

func newError(kind Kind, verb Verb) *Error {
	return &Error{Kind: kind, Verb: verb}
}

// ErrorWithConnectionState is implemented by errors that know whether the
// connection survives them.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err requires closing the connection.
//
// Returns false for nil and for decode errors other than KindLineTooLong.
// Errors of unknown type (I/O failures) return true.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}

// IsNeedMoreData reports whether err only signals an incomplete line.
func IsNeedMoreData(err error) bool {
	return errors.Is(err, ErrNeedMoreData)
}

// KindOf returns the kind of a decode error, or 0 if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
