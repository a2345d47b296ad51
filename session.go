package ftp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/pior/ftp/command"
	"github.com/pior/ftp/internal/coarsetime"
)

// Reply codes from RFC 959 section 4.2.
const (
	codeCommandOK        = 200
	codeServiceReady     = 220
	codeClosing          = 221
	codeLoggedIn         = 230
	codeNeedPassword     = 331
	codeNotAvailable     = 421
	codeSyntaxError      = 500
	codeArgSyntaxError   = 501
	codeNotImplemented   = 502
	codeBadSequence      = 503
	codeParamUnsupported = 504
)

// errAbusivePeer marks a session that ended because the peer broke the
// protocol badly enough to count against its breaker.
var errAbusivePeer = errors.New("ftp: abusive peer")

// session is the state of one control connection.
// Sessions live in the pool and are reused; reset clears everything that
// belongs to the previous connection.
type session struct {
	buf *command.Buffer
	w   *bufio.Writer

	conn   net.Conn
	reader *command.Reader
	logger *slog.Logger

	user         string
	typeCode     command.TypeCode
	dataAddr     netip.AddrPort
	decodeErrors int
	lastActive   time.Time
}

func newSession(maxLine int) *session {
	return &session{
		buf: command.NewBuffer(maxLine),
		w:   bufio.NewWriterSize(nil, 512),
	}
}

func (s *session) attach(conn net.Conn, logger *slog.Logger) {
	s.conn = conn
	s.reader = command.NewReader(conn, s.buf)
	s.w.Reset(conn)
	s.logger = logger
	s.typeCode = command.TypeCode{Rep: command.RepASCII, Form: command.FormNonPrint}
	s.lastActive = coarsetime.Now()
}

func (s *session) reset() {
	s.buf.Reset()
	s.w.Reset(nil)
	s.conn = nil
	s.reader = nil
	s.logger = nil
	s.user = ""
	s.typeCode = command.TypeCode{}
	s.dataAddr = netip.AddrPort{}
	s.decodeErrors = 0
	s.lastActive = time.Time{}
}

// reply writes "<code> <text>\r\n" and flushes.
func (s *session) reply(code int, text string) error {
	var num [3]byte
	s.w.Write(strconv.AppendInt(num[:0], int64(code), 10))
	s.w.WriteString(command.Space)
	s.w.WriteString(text)
	s.w.WriteString(command.CRLF)
	return s.w.Flush()
}

// serve runs the command loop until the peer quits or disconnects.
//
// It returns nil for orderly endings (QUIT, EOF, idle timeout), an error
// wrapping errAbusivePeer when the peer exceeded the line limit or the
// decode error budget, and the I/O error otherwise.
func (s *session) serve(cfg *Config, stats *serverStatsCollector) error {
	if err := s.reply(codeServiceReady, cfg.Greeting); err != nil {
		return err
	}

	for {
		if err := s.conn.SetReadDeadline(coarsetime.Deadline(cfg.IdleTimeout)); err != nil {
			return err
		}

		cmd, err := s.reader.ReadCommand()
		if err != nil {
			if kind := command.KindOf(err); kind != 0 {
				stats.recordDecodeError(kind == command.KindLineTooLong)
				if done, err := s.rejectLine(err, kind, cfg.MaxDecodeErrors); done {
					return err
				}
				continue
			}
			return s.readFailed(err)
		}

		stats.recordCommand()
		s.lastActive = coarsetime.Now()
		s.logger.Debug("command", "verb", cmd.Verb().String())

		quit, err := s.dispatch(cmd)
		if err != nil || quit {
			return err
		}
	}
}

// rejectLine answers a malformed line. done is true when the session must end.
func (s *session) rejectLine(decodeErr error, kind command.Kind, maxErrors int) (done bool, err error) {
	if command.ShouldCloseConnection(decodeErr) {
		s.logger.Warn("closing session", "error", decodeErr)
		_ = s.reply(codeSyntaxError, "Command line too long.")
		return true, fmt.Errorf("%w: %w", errAbusivePeer, decodeErr)
	}

	s.decodeErrors++
	s.logger.Debug("rejected command", "error", decodeErr, "errors", s.decodeErrors)

	if err := s.reply(replyForKind(kind)); err != nil {
		return true, err
	}

	if maxErrors > 0 && s.decodeErrors >= maxErrors {
		s.logger.Warn("closing session", "error", "too many decode errors", "errors", s.decodeErrors)
		_ = s.reply(codeNotAvailable, "Too many errors, closing control connection.")
		return true, fmt.Errorf("%w: %d decode errors", errAbusivePeer, s.decodeErrors)
	}
	return false, nil
}

func (s *session) readFailed(err error) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		idle := coarsetime.Now().Sub(s.lastActive).Round(time.Second)
		s.logger.Info("idle timeout", "idle", idle)
		_ = s.reply(codeNotAvailable, "Idle timeout, closing control connection.")
		return nil
	}

	return err
}

func (s *session) dispatch(cmd command.Command) (quit bool, err error) {
	switch c := cmd.(type) {
	case command.User:
		s.user = c.Name.String()
		return false, s.reply(codeNeedPassword, "User name okay, need password.")

	case command.Pass:
		if s.user == "" {
			return false, s.reply(codeBadSequence, "Login with USER first.")
		}
		s.logger.Info("user logged in", "user", s.user)
		return false, s.reply(codeLoggedIn, "User logged in, proceed.")

	case command.Port:
		s.dataAddr = c.Addr
		s.logger.Debug("data port set", "addr", s.dataAddr.String())
		return false, s.reply(codeCommandOK, "PORT command successful.")

	case command.Type:
		s.typeCode = c.Code
		return false, s.reply(codeCommandOK, "Type set to "+c.Code.String()+".")

	case command.Quit:
		return true, s.reply(codeClosing, "Service closing control connection.")

	case command.Other:
		if c.Name == command.VerbNoop {
			return false, s.reply(codeCommandOK, "NOOP ok.")
		}
	}

	return false, s.reply(codeNotImplemented, "Command not implemented.")
}

func replyForKind(kind command.Kind) (int, string) {
	switch kind {
	case command.KindInvalidCmdLength, command.KindLineTooLong:
		return codeSyntaxError, "Syntax error, command unrecognized."
	case command.KindInvalidTypeCode, command.KindInvalidFormCode:
		return codeParamUnsupported, "Command not implemented for that parameter."
	default:
		return codeArgSyntaxError, "Syntax error in parameters or arguments."
	}
}
