package command

import "net/netip"

// Command is a decoded command line. The set of implementations is closed:
// User, Pass, Port, Type, Quit and Other.
//
// Commands alias the line they were decoded from and are meant to be
// dispatched right away, not retained.
type Command interface {
	// Verb returns the upper-cased verb the command was decoded from.
	Verb() Verb
	isCommand()
}

// User is "USER <username>".
type User struct {
	Name Argument
}

// Pass is "PASS <password>".
type Pass struct {
	Password Argument
}

// Port is "PORT h1,h2,h3,h4,p1,p2": the address of the client's data port.
type Port struct {
	Addr netip.AddrPort
}

// Type is "TYPE <type-code>".
type Type struct {
	Code TypeCode
}

// Quit is "QUIT".
type Quit struct{}

// Other is any verb without a dedicated type. Its argument is not interpreted.
type Other struct {
	Name   Verb
	Arg    Argument
	HasArg bool
}

func (User) Verb() Verb    { return VerbUser }
func (Pass) Verb() Verb    { return VerbPass }
func (Port) Verb() Verb    { return VerbPort }
func (Type) Verb() Verb    { return VerbType }
func (Quit) Verb() Verb    { return VerbQuit }
func (o Other) Verb() Verb { return o.Name }

func (User) isCommand()  {}
func (Pass) isCommand()  {}
func (Port) isCommand()  {}
func (Type) isCommand()  {}
func (Quit) isCommand()  {}
func (Other) isCommand() {}

func (c User) String() string { return "USER " + c.Name.String() }

// String hides the password.
func (c Pass) String() string { return "PASS ****" }

func (c Port) String() string { return "PORT " + c.Addr.String() }
func (c Type) String() string { return "TYPE " + c.Code.String() }
func (Quit) String() string   { return "QUIT" }

func (c Other) String() string {
	if !c.HasArg {
		return c.Name.String()
	}
	return c.Name.String() + " " + c.Arg.String()
}
