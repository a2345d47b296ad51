package command

import (
	"bytes"
	"net/netip"
)

// Split separates a line into its verb and argument on the first space.
//
// hasArg is false when the line has no space at all. A line ending with the
// separator yields an empty argument with hasArg true.
func Split(line []byte) (verb Verb, arg Argument, hasArg bool, err error) {
	candidate := line
	if p := indexSpace(line); p >= 0 {
		candidate = line[:p]
		arg = Argument(line[p+1:])
		hasArg = true
	}

	verb, err = NewVerb(candidate)
	if err != nil {
		return Verb{}, nil, false, err
	}
	return verb, arg, hasArg, nil
}

func indexSpace(p []byte) int {
	for i, c := range p {
		if IsSpace(c) {
			return i
		}
	}
	return -1
}

// Decode extracts the next line from b and decodes it.
//
// Returns ErrNeedMoreData when b holds no complete line yet, and an error of
// kind KindLineTooLong when b is full without one. Any other error concerns
// the line just consumed; the next call moves on to the following line.
func Decode(b *Buffer) (Command, error) {
	line, err := b.ReadLine()
	if err != nil {
		return nil, err
	}
	return Parse(line)
}

// Parse decodes a single command line, terminator already removed.
func Parse(line []byte) (Command, error) {
	verb, arg, hasArg, err := Split(line)
	if err != nil {
		return nil, err
	}

	switch verb {
	case VerbUser:
		if err := requireArg(verb, arg, hasArg); err != nil {
			return nil, err
		}
		return User{Name: arg}, nil

	case VerbPass:
		if err := requireArg(verb, arg, hasArg); err != nil {
			return nil, err
		}
		return Pass{Password: arg}, nil

	case VerbPort:
		if err := requireText(verb, arg, hasArg); err != nil {
			return nil, err
		}
		addr, err := parseHostPort(verb, arg)
		if err != nil {
			return nil, err
		}
		return Port{Addr: addr}, nil

	case VerbType:
		if err := requireText(verb, arg, hasArg); err != nil {
			return nil, err
		}
		code, err := parseTypeCode(verb, arg)
		if err != nil {
			return nil, err
		}
		return Type{Code: code}, nil

	case VerbQuit:
		if hasArg {
			return nil, newError(KindUnexpectedData, verb)
		}
		return Quit{}, nil

	default:
		return Other{Name: verb, Arg: arg, HasArg: hasArg}, nil
	}
}

func requireArg(verb Verb, arg Argument, hasArg bool) error {
	if !hasArg {
		return newError(KindMissingArgument, verb)
	}
	if len(arg) == 0 {
		return newError(KindEmptyArgument, verb)
	}
	return nil
}

func requireText(verb Verb, arg Argument, hasArg bool) error {
	if err := requireArg(verb, arg, hasArg); err != nil {
		return err
	}
	if off := invalidUTF8(arg); off >= 0 {
		return &Error{Kind: KindInvalidUTF8, Verb: verb, Offset: off}
	}
	return nil
}

// parseHostPort parses "h1,h2,h3,h4,p1,p2".
func parseHostPort(verb Verb, arg Argument) (netip.AddrPort, error) {
	var fields [6]uint8

	n := 0
	rest := []byte(arg)
	for {
		field, tail, more := bytes.Cut(rest, []byte{','})
		if n == len(fields) {
			return netip.AddrPort{}, newError(KindUnexpectedData, verb)
		}
		v, ok := parseUint8(field)
		if !ok {
			return netip.AddrPort{}, newError(KindInvalidNumber, verb)
		}
		fields[n] = v
		n++
		if !more {
			break
		}
		rest = tail
	}

	switch {
	case n < 4:
		return netip.AddrPort{}, newError(KindMissingHostNumber, verb)
	case n < 6:
		return netip.AddrPort{}, newError(KindMissingPortNumber, verb)
	}

	addr := netip.AddrFrom4([4]byte{fields[0], fields[1], fields[2], fields[3]})
	port := uint16(fields[4])<<8 | uint16(fields[5])
	return netip.AddrPortFrom(addr, port), nil
}

// parseTypeCode parses "A [N|T|C]", "E [N|T|C]", "I" or "L <byte-size>".
func parseTypeCode(verb Verb, arg Argument) (TypeCode, error) {
	code, rest, hasRest := bytes.Cut(arg, []byte(Space))
	if len(code) != 1 {
		return TypeCode{}, newError(KindInvalidTypeCode, verb)
	}

	tc := TypeCode{Rep: Representation(toUpper(code[0]))}
	switch tc.Rep {
	case RepASCII, RepEBCDIC:
		if !hasRest {
			return tc, nil
		}
		form, _, hasExtra := bytes.Cut(rest, []byte(Space))
		if hasExtra {
			return TypeCode{}, newError(KindUnexpectedData, verb)
		}
		if len(form) != 1 {
			return TypeCode{}, newError(KindInvalidFormCode, verb)
		}
		switch f := FormCode(toUpper(form[0])); f {
		case FormNonPrint, FormTelnet, FormCarriageControl:
			tc.Form = f
		default:
			return TypeCode{}, newError(KindInvalidFormCode, verb)
		}
		return tc, nil

	case RepImage:
		if hasRest {
			return TypeCode{}, newError(KindUnexpectedData, verb)
		}
		return tc, nil

	case RepLocal:
		if !hasRest {
			return TypeCode{}, newError(KindInvalidNumber, verb)
		}
		size, _, hasExtra := bytes.Cut(rest, []byte(Space))
		if hasExtra {
			return TypeCode{}, newError(KindUnexpectedData, verb)
		}
		v, ok := parseUint8(size)
		if !ok || v == 0 {
			return TypeCode{}, newError(KindInvalidNumber, verb)
		}
		tc.ByteSize = v
		return tc, nil

	default:
		return TypeCode{}, newError(KindInvalidTypeCode, verb)
	}
}

// parseUint8 converts ASCII decimal digits to a value in 0-255.
func parseUint8(p []byte) (uint8, bool) {
	if len(p) == 0 {
		return 0, false
	}
	var v uint
	for _, c := range p {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint(c-'0')
		if v > 255 {
			return 0, false
		}
	}
	return uint8(v), true
}
