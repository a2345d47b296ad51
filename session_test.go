package ftp

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/pior/ftp/command"
	"github.com/pior/ftp/internal/coarsetime"
	"github.com/pior/ftp/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.DiscardHandler)

func serveScript(t *testing.T, cfg Config, input ...string) (*testutils.ConnMock, *serverStatsCollector, error) {
	t.Helper()
	cfg = cfg.withDefaults()

	conn := testutils.NewConnMock(input...)
	sess := newSession(cfg.MaxLineSize)
	sess.attach(conn, discardLogger)

	stats := &serverStatsCollector{}
	err := sess.serve(&cfg, stats)
	return conn, stats, err
}

func replies(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func TestSession_Dialog(t *testing.T) {
	conn, stats, err := serveScript(t, Config{},
		"USER bob\r\n",
		"PASS secret\r\n",
		"TYPE I\r\n",
		"PORT 127,0,0,1,7,138\r\n",
		"NOOP\r\n",
		"LIST /tmp\r\n",
		"QUIT\r\n",
		"USER ignored\r\n",
	)
	require.NoError(t, err)

	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"331 User name okay, need password.",
		"230 User logged in, proceed.",
		"200 Type set to I.",
		"200 PORT command successful.",
		"200 NOOP ok.",
		"502 Command not implemented.",
		"221 Service closing control connection.",
	), conn.Written())

	assert.Equal(t, uint64(7), stats.snapshot().Commands)
	assert.Zero(t, stats.snapshot().DecodeErrors)
}

func TestSession_PipelinedLowercase(t *testing.T) {
	conn, _, err := serveScript(t, Config{}, "user a\r\npass b\r\ntype a n\r\nquit\r\n")
	require.NoError(t, err)

	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"331 User name okay, need password.",
		"230 User logged in, proceed.",
		"200 Type set to A N.",
		"221 Service closing control connection.",
	), conn.Written())
}

func TestSession_PassWithoutUser(t *testing.T) {
	conn, _, err := serveScript(t, Config{}, "PASS secret\r\n")
	require.NoError(t, err)

	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"503 Login with USER first.",
	), conn.Written())
}

func TestSession_CustomGreeting(t *testing.T) {
	conn, _, err := serveScript(t, Config{Greeting: "hello"})
	require.NoError(t, err)
	assert.Equal(t, replies("220 hello"), conn.Written())
}

func TestSession_DecodeErrors(t *testing.T) {
	conn, stats, err := serveScript(t, Config{},
		"XY\r\n",
		"TYPE X\r\n",
		"TYPE A Z\r\n",
		"PORT 1,2\r\n",
		"USER\r\n",
		"QUIT now\r\n",
		"NOOP\r\n",
	)
	require.NoError(t, err, "EOF ends the session cleanly")

	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"500 Syntax error, command unrecognized.",
		"504 Command not implemented for that parameter.",
		"504 Command not implemented for that parameter.",
		"501 Syntax error in parameters or arguments.",
		"501 Syntax error in parameters or arguments.",
		"501 Syntax error in parameters or arguments.",
		"200 NOOP ok.",
	), conn.Written())

	snap := stats.snapshot()
	assert.Equal(t, uint64(6), snap.DecodeErrors)
	assert.Equal(t, uint64(1), snap.Commands)
	assert.Zero(t, snap.LinesTooLong)
}

func TestSession_TooManyDecodeErrors(t *testing.T) {
	conn, _, err := serveScript(t, Config{MaxDecodeErrors: 2}, "XY\r\nXY\r\nNOOP\r\n")

	require.Error(t, err)
	assert.ErrorIs(t, err, errAbusivePeer)
	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"500 Syntax error, command unrecognized.",
		"500 Syntax error, command unrecognized.",
		"421 Too many errors, closing control connection.",
	), conn.Written())
}

func TestSession_UnlimitedDecodeErrors(t *testing.T) {
	input := strings.Repeat("XY\r\n", 50) + "QUIT\r\n"
	conn, _, err := serveScript(t, Config{MaxDecodeErrors: -1}, input)

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(conn.Written(), "221 Service closing control connection.\r\n"))
}

func TestSession_DefaultDecodeErrorBudget(t *testing.T) {
	input := strings.Repeat("XY\r\n", 50) + "QUIT\r\n"
	conn, _, err := serveScript(t, Config{}, input)

	require.ErrorIs(t, err, errAbusivePeer)
	assert.Equal(t, DefaultConfig().MaxDecodeErrors, strings.Count(conn.Written(), "500 Syntax error"))
	assert.True(t, strings.HasSuffix(conn.Written(), "421 Too many errors, closing control connection.\r\n"))
}

func TestSession_LineTooLong(t *testing.T) {
	conn, stats, err := serveScript(t, Config{MaxLineSize: 64}, "NOOP\r\n", strings.Repeat("A", 100))

	require.Error(t, err)
	assert.ErrorIs(t, err, errAbusivePeer)
	assert.ErrorIs(t, err, command.ErrLineTooLong)
	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"200 NOOP ok.",
		"500 Command line too long.",
	), conn.Written())

	snap := stats.snapshot()
	assert.Equal(t, uint64(1), snap.LinesTooLong)
	assert.Equal(t, uint64(1), snap.DecodeErrors)
}

func TestSession_LongestLine(t *testing.T) {
	longest := "USER " + strings.Repeat("a", 63-len("USER "))
	conn, stats, err := serveScript(t, Config{MaxLineSize: 64}, longest+"\r\nQUIT\r\n")

	require.NoError(t, err)
	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"331 User name okay, need password.",
		"221 Service closing control connection.",
	), conn.Written())
	assert.Zero(t, stats.snapshot().LinesTooLong)
}

func TestSession_PartialLineAtEOF(t *testing.T) {
	conn, _, err := serveScript(t, Config{}, "NOOP\r\nUSER bo")
	require.NoError(t, err)
	assert.Equal(t, replies(
		"220 Service ready for new user.",
		"200 NOOP ok.",
	), conn.Written())
}

func TestSession_SetsIdleDeadline(t *testing.T) {
	conn, _, err := serveScript(t, Config{IdleTimeout: time.Minute}, "NOOP\r\n")
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(time.Minute), conn.ReadDeadline(), 2*coarsetime.Resolution)
}

func TestSession_IdleTimeout(t *testing.T) {
	cfg := Config{IdleTimeout: 100 * time.Millisecond}.withDefaults()

	server, client := net.Pipe()
	defer client.Close()

	sess := newSession(cfg.MaxLineSize)
	sess.attach(server, discardLogger)

	done := make(chan error, 1)
	go func() {
		done <- sess.serve(&cfg, &serverStatsCollector{})
		server.Close()
	}()

	r := bufio.NewReader(client)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "220 Service ready for new user.\r\n", line)

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "421 Idle timeout, closing control connection.\r\n", line)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
}

func TestSession_WriteFailure(t *testing.T) {
	conn := testutils.NewConnMock("NOOP\r\n")
	require.NoError(t, conn.Close())

	cfg := Config{}.withDefaults()
	sess := newSession(cfg.MaxLineSize)
	sess.attach(conn, discardLogger)

	err := sess.serve(&cfg, &serverStatsCollector{})
	assert.ErrorIs(t, err, net.ErrClosed)
	assert.False(t, errors.Is(err, errAbusivePeer))
}

func TestSession_Reset(t *testing.T) {
	cfg := Config{}.withDefaults()
	conn := testutils.NewConnMock("USER bob\r\nPORT 10,0,0,1,0,21\r\nTYPE L 8\r\nXY\r\nNOO")

	sess := newSession(cfg.MaxLineSize)
	sess.attach(conn, discardLogger)
	require.NoError(t, sess.serve(&cfg, &serverStatsCollector{}))

	assert.Equal(t, "bob", sess.user)
	assert.Equal(t, netip.MustParseAddrPort("10.0.0.1:21"), sess.dataAddr)
	assert.Equal(t, command.TypeCode{Rep: command.RepLocal, ByteSize: 8}, sess.typeCode)
	assert.Equal(t, 1, sess.decodeErrors)
	assert.Equal(t, 3, sess.buf.Len())

	sess.reset()

	assert.Empty(t, sess.user)
	assert.False(t, sess.dataAddr.IsValid())
	assert.Zero(t, sess.decodeErrors)
	assert.Zero(t, sess.buf.Len())
	assert.Nil(t, sess.conn)
}

func TestReplyForKind(t *testing.T) {
	tests := []struct {
		kind command.Kind
		code int
	}{
		{command.KindInvalidCmdLength, 500},
		{command.KindLineTooLong, 500},
		{command.KindMissingArgument, 501},
		{command.KindEmptyArgument, 501},
		{command.KindUnexpectedData, 501},
		{command.KindMissingHostNumber, 501},
		{command.KindMissingPortNumber, 501},
		{command.KindInvalidNumber, 501},
		{command.KindInvalidUTF8, 501},
		{command.KindInvalidTypeCode, 504},
		{command.KindInvalidFormCode, 504},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			code, text := replyForKind(tt.kind)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, text)
		})
	}
}
