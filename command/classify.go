package command

// IsPrint reports whether b is a printable, non-space ASCII character (33-126).
func IsPrint(b byte) bool {
	return b >= 33 && b <= 126
}

// IsCmdChar reports whether b may appear in a verb (ASCII letter).
func IsCmdChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// IsSpace reports whether b is the verb/argument separator.
func IsSpace(b byte) bool {
	return b == ' '
}

// IsCR reports whether b is a carriage return.
func IsCR(b byte) bool {
	return b == '\r'
}

// IsLF reports whether b is a line feed.
func IsLF(b byte) bool {
	return b == '\n'
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	return b
}
