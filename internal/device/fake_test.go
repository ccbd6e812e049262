package device

import (
	"context"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/muurk/bravia/internal/protocol"
)

// fakeTV is a loopback TCP server speaking the wire format.
type fakeTV struct {
	t     *testing.T
	ln    net.Listener
	conns chan net.Conn
}

func newFakeTV(t *testing.T) *fakeTV {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeTV{t: t, ln: ln, conns: make(chan net.Conn, 4)}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			f.conns <- c
		}
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeTV) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeTV) accept() net.Conn {
	f.t.Helper()
	select {
	case c := <-f.conns:
		f.t.Cleanup(func() { _ = c.Close() })
		return c
	case <-time.After(2 * time.Second):
		f.t.Fatal("no connection accepted")
		return nil
	}
}

// testDevice connects a Device with short timers to a fresh fake TV.
func testDevice(t *testing.T, opts ...Option) (*Device, *fakeTV, net.Conn) {
	t.Helper()
	tv := newFakeTV(t)
	all := append([]Option{
		WithPort(tv.port()),
		WithResponseTimeout(200 * time.Millisecond),
		WithCloseGrace(50 * time.Millisecond),
		WithDisconnectTimeout(time.Second),
	}, opts...)
	dev, err := New("127.0.0.1", all...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := dev.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = dev.Disconnect(context.Background()) })
	return dev, tv, tv.accept()
}

func readPacket(t *testing.T, c net.Conn) *protocol.Packet {
	t.Helper()
	buf := make([]byte, protocol.PacketSize)
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(c, buf); err != nil {
		t.Fatalf("server read: %v", err)
	}
	pkt, ok := protocol.Decode(buf)
	if !ok {
		t.Fatalf("server got malformed packet % X", buf)
	}
	return pkt
}

func writeRaw(t *testing.T, c net.Conn, s string) {
	t.Helper()
	if _, err := c.Write([]byte(s)); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func answer(command, parameters string) string {
	return "*SA" + command + parameters + "\n"
}

func notify(command, parameters string) string {
	return "*SN" + command + parameters + "\n"
}

type sendResult struct {
	pkt *protocol.Packet
	err error
}

func sendAsync(dev *Device, ctx context.Context, req Request) <-chan sendResult {
	ch := make(chan sendResult, 1)
	go func() {
		pkt, err := dev.Send(ctx, req)
		ch <- sendResult{pkt, err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan sendResult) sendResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("Send did not return")
		return sendResult{}
	}
}

// gatedDialer blocks until release is closed.
type gatedDialer struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	close(g.entered)
	<-g.release
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

// faultyConn fails its next failures writes, either with a short count or
// by stalling until the write deadline.
type faultyConn struct {
	net.Conn

	mu       sync.Mutex
	failures int
	stall    bool
	deadline time.Time
}

func (c *faultyConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	c.deadline = t
	c.mu.Unlock()
	return c.Conn.SetWriteDeadline(t)
}

func (c *faultyConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	fail := c.failures > 0
	if fail {
		c.failures--
	}
	stall, deadline := c.stall, c.deadline
	c.mu.Unlock()

	switch {
	case !fail:
		return c.Conn.Write(p)
	case stall:
		time.Sleep(time.Until(deadline))
		return 0, os.ErrDeadlineExceeded
	default:
		return len(p) / 2, nil
	}
}

// faultyDialer dials for real and hands out conn wrapped around the result.
type faultyDialer struct {
	conn *faultyConn
}

func (f *faultyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	f.conn.Conn = c
	return f.conn, nil
}
