package channel

import (
	"net"
	"os"
	"sync"
	"time"
)

// In-memory multicast segment: every write reaches every attached socket, the writer included
type hub struct {
	mu    sync.Mutex
	conns []*hubConn
	sent  []hubPacket
}

type hubPacket struct {
	data []byte
	from net.Addr
}

type hubConn struct {
	hub   *hub
	addr  *net.UDPAddr
	inbox chan hubPacket

	mu        sync.Mutex
	deadline  time.Time
	writeErr  error
	closed    chan struct{}
	closeOnce sync.Once
}

func newHub() *hub {
	return &hub{}
}

func (h *hub) attach(ip string, port int) *hubConn {
	conn := &hubConn{
		hub:    h,
		addr:   &net.UDPAddr{IP: net.ParseIP(ip), Port: port},
		inbox:  make(chan hubPacket, 1024),
		closed: make(chan struct{}),
	}
	h.mu.Lock()
	h.conns = append(h.conns, conn)
	h.mu.Unlock()
	return conn
}

// Datagrams written by addr so far
func (h *hub) sentBy(addr net.Addr) (packets [][]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, packet := range h.sent {
		if packet.from.String() == addr.String() {
			packets = append(packets, packet.data)
		}
	}
	return
}

func (h *hub) broadcast(packet hubPacket) {
	h.mu.Lock()
	h.sent = append(h.sent, packet)
	conns := append([]*hubConn(nil), h.conns...)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.deliver(packet)
	}
}

func (conn *hubConn) deliver(packet hubPacket) {
	data := append([]byte(nil), packet.data...)
	select {
	case <-conn.closed:
	case conn.inbox <- hubPacket{data: data, from: packet.from}:
	default:
	}
}

// Hands a raw datagram to this socket only, as if sent from from
func (conn *hubConn) inject(data []byte, from net.Addr) {
	conn.deliver(hubPacket{data: data, from: from})
}

func (conn *hubConn) failWrites(err error) {
	conn.mu.Lock()
	conn.writeErr = err
	conn.mu.Unlock()
}

func (conn *hubConn) ReadFrom(p []byte) (n int, addr net.Addr, err error) {
	select {
	case <-conn.closed:
		err = net.ErrClosed
		return
	default:
	}

	conn.mu.Lock()
	deadline := conn.deadline
	conn.mu.Unlock()

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-conn.closed:
		err = net.ErrClosed
	case packet := <-conn.inbox:
		n = copy(p, packet.data)
		addr = packet.from
	case <-timeout:
		err = os.ErrDeadlineExceeded
	}
	return
}

func (conn *hubConn) WriteTo(p []byte, addr net.Addr) (n int, err error) {
	select {
	case <-conn.closed:
		err = net.ErrClosed
		return
	default:
	}

	conn.mu.Lock()
	err = conn.writeErr
	conn.mu.Unlock()
	if err != nil {
		return
	}

	conn.hub.broadcast(hubPacket{data: append([]byte(nil), p...), from: conn.addr})
	n = len(p)
	return
}

func (conn *hubConn) SetReadDeadline(t time.Time) (err error) {
	conn.mu.Lock()
	conn.deadline = t
	conn.mu.Unlock()
	return
}

func (conn *hubConn) Close() (err error) {
	conn.closeOnce.Do(func() {
		close(conn.closed)
	})
	return
}
