// Package network wraps the TLS listener so plain HTTP requests sent to the
// HTTPS port are redirected instead of failing the handshake.
package network

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"sync"
)

const peekSize = 2048

type autoHttpsListener struct {
	net.Listener
}

// NewAutoHttpsListener returns a listener whose connections answer a plain
// HTTP request with a 307 to the https:// URL. Anything else, such as a TLS
// ClientHello, is passed through unchanged.
func NewAutoHttpsListener(listener net.Listener) net.Listener {
	return &autoHttpsListener{Listener: listener}
}

func (l *autoHttpsListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &autoHttpsConn{Conn: conn}, nil
}

type autoHttpsConn struct {
	net.Conn

	once    sync.Once
	pending []byte
	readErr error
}

// sniff reads the first packet. A parsable HTTP request is answered with a
// redirect and the connection closed; otherwise the bytes are kept for Read.
func (c *autoHttpsConn) sniff() {
	buf := make([]byte, peekSize)
	n, err := c.Conn.Read(buf)
	c.pending = buf[:n]
	if err != nil {
		c.readErr = err
		return
	}

	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(c.pending)))
	if err != nil {
		return
	}
	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", "https://"+req.Host+req.RequestURI)
	resp.Header.Set("Connection", "close")
	_ = resp.Write(c.Conn)
	_ = c.Conn.Close()
	c.pending = nil
	c.readErr = net.ErrClosed
}

func (c *autoHttpsConn) Read(p []byte) (int, error) {
	c.once.Do(c.sniff)

	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}
	if c.readErr != nil {
		err := c.readErr
		c.readErr = nil
		return 0, err
	}
	return c.Conn.Read(p)
}
