// Package command decodes the FTP control channel (RFC 959).
//
// The package turns an arbitrarily fragmented byte stream into typed
// commands, one CRLF-terminated line at a time. It performs no socket I/O of
// its own beyond the optional Reader helper: callers append received bytes to
// a Buffer and call Decode until it reports that more data is needed.
//
// # Core Types
//
//   - Buffer: per-connection accumulation buffer and line extractor
//   - Verb: upper-cased 3 or 4 byte command mnemonic, a comparable value
//   - Argument: raw bytes after the verb separator
//   - Command: closed sum type (User, Pass, Port, Type, Quit, Other)
//   - Error: decode failure carrying a Kind
//
// # Decoding
//
// Append bytes and drain complete lines:
//
//	buf := command.NewBuffer(command.MaxLineSize)
//	buf.Write(received)
//	for {
//	    cmd, err := command.Decode(buf)
//	    if command.IsNeedMoreData(err) {
//	        break // read more from the network
//	    }
//	    if err != nil {
//	        if command.ShouldCloseConnection(err) {
//	            conn.Close()
//	            return
//	        }
//	        reply(501, err)
//	        continue
//	    }
//	    dispatch(cmd)
//	}
//
// Or let Reader drive an io.Reader:
//
//	r := command.NewReader(conn, nil)
//	cmd, err := r.ReadCommand()
//
// Dispatch on the concrete type:
//
//	switch c := cmd.(type) {
//	case command.User:
//	    login(c.Name.String())
//	case command.Port:
//	    dial(c.Addr)
//	case command.Type:
//	    setType(c.Code)
//	case command.Quit:
//	    bye()
//	case command.Other:
//	    notImplemented(c.Name)
//	}
//
// # Wire Format
//
//	<verb>[ <argument>]\r\n
//
// The verb is 3 or 4 bytes and is matched case-insensitively. A single space
// separates it from the argument, which runs to the end of the line and may
// itself contain spaces. Lines are limited to MaxLineSize bytes by default.
//
// # Error Handling
//
// Every failure is an *Error. Its Kind tells how the connection is affected:
//
//   - KindNeedMoreData: nothing lost, read more and call Decode again
//   - KindLineTooLong: no terminator within the limit, CLOSE the connection
//   - every other kind: the offending line was consumed, reply and continue
//
// Use errors.Is with ErrNeedMoreData or ErrLineTooLong, KindOf to switch on
// the kind, and ShouldCloseConnection for the close decision.
//
// # Memory
//
// Decoded lines, arguments and commands alias the Buffer's memory. The
// Buffer never writes over bytes it has handed out, so a command stays valid
// after later reads; it is still meant to be consumed right away.
//
// # Thread Safety
//
// A Buffer and a Reader belong to a single connection and must not be shared
// across goroutines. Parse, Split and the classifiers are pure functions.
package command
