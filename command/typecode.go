package command

import "strconv"

// Representation is the data representation type selected by TYPE.
type Representation byte

func (r Representation) String() string {
	switch r {
	case RepASCII:
		return "ASCII"
	case RepEBCDIC:
		return "EBCDIC"
	case RepImage:
		return "Image"
	case RepLocal:
		return "Local"
	default:
		return "Representation(" + strconv.Itoa(int(r)) + ")"
	}
}

// FormCode is the optional format control of an ASCII or EBCDIC type.
type FormCode byte

func (f FormCode) String() string {
	switch f {
	case FormNone:
		return "None"
	case FormNonPrint:
		return "NonPrint"
	case FormTelnet:
		return "Telnet"
	case FormCarriageControl:
		return "CarriageControl"
	default:
		return "FormCode(" + strconv.Itoa(int(f)) + ")"
	}
}

// TypeCode is a decoded TYPE argument.
//
//   - ASCII and EBCDIC carry an optional Form (FormNone when absent)
//   - Image carries nothing else
//   - Local carries ByteSize, always 1-255
type TypeCode struct {
	Rep      Representation
	Form     FormCode
	ByteSize uint8
}

// String returns the wire form, e.g. "A N", "I" or "L 8".
func (t TypeCode) String() string {
	s := string(rune(t.Rep))
	switch {
	case t.Rep == RepLocal:
		s += " " + strconv.Itoa(int(t.ByteSize))
	case t.Form != FormNone:
		s += " " + string(rune(t.Form))
	}
	return s
}
