package shotmux

import (
	"fmt"
	"net"
	"sync"
)

// UDPPort adapts a UDP listener to the ShotPorter interface. Connector
// software publishes shot records as one JSON datagram per shot; Read
// re-frames each datagram as a newline-terminated line so the mux's scanner
// sees the same shape as the serial transport. Writes go back to the most
// recent sender, which is how the connector expects acknowledgements.
type UDPPort struct {
	conn *net.UDPConn

	mu      sync.Mutex
	pending []byte
	peer    *net.UDPAddr
}

// NewUDPPort binds a UDP listener on addr (for example "127.0.0.1:5555").
func NewUDPPort(addr string) (*UDPPort, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", addr, err)
	}
	return &UDPPort{conn: conn}, nil
}

// Read serves buffered datagram bytes, fetching the next datagram when the
// buffer is empty. Each datagram gains a trailing newline.
func (p *UDPPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		p.mu.Unlock()
		return n, nil
	}
	p.mu.Unlock()

	buf := make([]byte, 64*1024)
	n, addr, err := p.conn.ReadFromUDP(buf)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.peer = addr
	p.pending = append(buf[:n], '\n')
	n = copy(b, p.pending)
	p.pending = p.pending[n:]
	p.mu.Unlock()
	return n, nil
}

// Write sends to the most recent sender. Before any datagram has arrived
// there is no peer and the write is dropped, reported as fully written so
// command attempts do not error the mux.
func (p *UDPPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	peer := p.peer
	p.mu.Unlock()
	if peer == nil {
		return len(b), nil
	}
	return p.conn.WriteToUDP(b, peer)
}

// Close closes the underlying listener.
func (p *UDPPort) Close() error { return p.conn.Close() }

// LocalAddr returns the bound listen address.
func (p *UDPPort) LocalAddr() net.Addr { return p.conn.LocalAddr() }
