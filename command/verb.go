package command

// Verb is an upper-cased command mnemonic of 3 or 4 bytes.
// It is a small value type: compare with ==, use as a map key.
type Verb struct {
	b [MaxVerbLength]byte
	n uint8
}

// NewVerb copies p into a Verb, upper-casing ASCII letters.
// Fails with KindInvalidCmdLength unless len(p) is 3 or 4.
func NewVerb(p []byte) (Verb, error) {
	var v Verb
	if len(p) < MinVerbLength || len(p) > MaxVerbLength {
		return v, newError(KindInvalidCmdLength, Verb{})
	}
	for i, c := range p {
		if IsCmdChar(c) {
			c = toUpper(c)
		}
		v.b[i] = c
	}
	v.n = uint8(len(p))
	return v, nil
}

func mustVerb(s string) Verb {
	v, err := NewVerb([]byte(s))
	if err != nil {
		panic("command: invalid verb " + s)
	}
	return v
}

// Len returns 3 or 4, or 0 for the zero Verb.
func (v Verb) Len() int {
	return int(v.n)
}

// IsZero reports whether v is the zero Verb.
func (v Verb) IsZero() bool {
	return v.n == 0
}

func (v Verb) String() string {
	return string(v.b[:v.n])
}
