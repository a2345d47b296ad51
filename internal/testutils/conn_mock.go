package testutils

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// ConnMock is a net.Conn that replays scripted client input and records
// everything the server writes.
type ConnMock struct {
	mu       sync.Mutex
	input    io.Reader
	written  bytes.Buffer
	remote   net.Addr
	closed   bool
	deadline time.Time
}

// NewConnMock returns a connection whose reads yield the concatenated input
// and then io.EOF.
func NewConnMock(input ...string) *ConnMock {
	return &ConnMock{
		input:  strings.NewReader(strings.Join(input, "")),
		remote: &net.TCPAddr{IP: net.IPv4(192, 0, 2, 10), Port: 40000},
	}
}

// WithRemote sets the peer address reported by RemoteAddr.
func (m *ConnMock) WithRemote(addr net.Addr) *ConnMock {
	m.remote = addr
	return m
}

func (m *ConnMock) Read(b []byte) (int, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, net.ErrClosed
	}
	return m.input.Read(b)
}

func (m *ConnMock) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	return m.written.Write(b)
}

func (m *ConnMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *ConnMock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Written returns the bytes written so far.
func (m *ConnMock) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written.String()
}

// ReadDeadline returns the last deadline set on reads.
func (m *ConnMock) ReadDeadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline
}

func (m *ConnMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 21}
}

func (m *ConnMock) RemoteAddr() net.Addr {
	return m.remote
}

func (m *ConnMock) SetDeadline(t time.Time) error {
	return m.SetReadDeadline(t)
}

func (m *ConnMock) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline = t
	return nil
}

func (m *ConnMock) SetWriteDeadline(t time.Time) error { return nil }
