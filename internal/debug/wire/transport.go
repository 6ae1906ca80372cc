package wire

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Transport carries framed messages to and from the debuggee-side runner.
type Transport interface {
	// Send sends one message.
	Send(content []byte) error

	// Receive blocks until the next message arrives.
	Receive() ([]byte, error)

	// Close closes the transport.
	Close() error
}

// SocketTransport implements Transport over a TCP connection. This is the
// primary transport: the runner listens on localhost and the controller
// dials it after launching the process.
type SocketTransport struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewSocketTransport dials the runner at the given address.
func NewSocketTransport(address string) (*SocketTransport, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	return &SocketTransport{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// NewSocketTransportFromConn wraps an existing connection.
func NewSocketTransportFromConn(conn net.Conn) *SocketTransport {
	return &SocketTransport{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// Send sends one framed message.
func (t *SocketTransport) Send(content []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return writeFrame(t.conn, content)
}

// Receive blocks until the next framed message arrives.
func (t *SocketTransport) Receive() ([]byte, error) {
	return readFrame(t.reader)
}

// Close closes the connection.
func (t *SocketTransport) Close() error {
	return t.conn.Close()
}

// RawTransport wraps any io.ReadWriteCloser as a Transport.
type RawTransport struct {
	rwc    io.ReadWriteCloser
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewRawTransport creates a transport from any ReadWriteCloser.
func NewRawTransport(rwc io.ReadWriteCloser) *RawTransport {
	return &RawTransport{
		rwc:    rwc,
		reader: bufio.NewReader(rwc),
	}
}

// Send sends one framed message.
func (t *RawTransport) Send(content []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return writeFrame(t.rwc, content)
}

// Receive blocks until the next framed message arrives.
func (t *RawTransport) Receive() ([]byte, error) {
	return readFrame(t.reader)
}

// Close closes the underlying connection.
func (t *RawTransport) Close() error {
	return t.rwc.Close()
}

// WebSocketTransport implements Transport over a WebSocket connection, for
// runners hosted off the local machine. WebSocket messages carry their own
// length, so no Content-Length framing is applied.
type WebSocketTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWebSocketTransport dials the runner at the given WebSocket URL.
func NewWebSocketTransport(url string) (*WebSocketTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	conn.SetReadLimit(MaxFrameSize)

	return &WebSocketTransport{conn: conn}, nil
}

// Send sends one message.
func (t *WebSocketTransport) Send(content []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn.WriteMessage(websocket.TextMessage, content)
}

// Receive blocks until the next message arrives.
func (t *WebSocketTransport) Receive() ([]byte, error) {
	_, content, err := t.conn.ReadMessage()
	return content, err
}

// Close closes the connection.
func (t *WebSocketTransport) Close() error {
	return t.conn.Close()
}
