package command

import "unicode/utf8"

// Argument is the raw remainder of a command line after the verb separator.
// It aliases the line it was split from.
type Argument []byte

func (a Argument) String() string {
	return string(a)
}

// Text returns the argument as a string after checking that it is valid UTF-8.
// Fails with KindInvalidUTF8 carrying the offset of the first bad byte.
func (a Argument) Text() (string, error) {
	if off := invalidUTF8(a); off >= 0 {
		return "", &Error{Kind: KindInvalidUTF8, Offset: off}
	}
	return string(a), nil
}

// invalidUTF8 returns the offset of the first byte that does not start a
// valid UTF-8 sequence, or -1.
func invalidUTF8(p []byte) int {
	for i := 0; i < len(p); {
		if p[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
