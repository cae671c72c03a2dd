package network

import (
	"context"
	"fmt"
	"net"
	"smcp/pkg/protocol"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"
)

// UDP socket joined to one multicast group. Close leaves the group first.
type MulticastConn struct {
	*net.UDPConn
	Group     *net.UDPAddr
	Interface *net.Interface // nil means kernel default
	leave     func() error
}

// Reuse options so several participants on one host can bind the group port
func reuseControl(network, address string, c syscall.RawConn) (err error) {
	controlErr := c.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if err != nil {
			return
		}
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if controlErr != nil {
		err = controlErr
	}
	return
}

// Binds the group port, joins the group and sets TTL/hop limit and loopback
func ListenMulticast(ctx context.Context, group *net.UDPAddr, ifaceName string, ttl int) (conn *MulticastConn, err error) {
	if group == nil || !group.IP.IsMulticast() {
		err = fmt.Errorf("%w: %v is not a multicast group", protocol.ErrConfiguration, group)
		return
	}

	iface, err := ResolveInterface(ifaceName, group.IP)
	if err != nil {
		return
	}

	network := "udp6"
	if group.IP.To4() != nil {
		network = "udp4"
	}

	cfg := net.ListenConfig{Control: reuseControl}
	bindAddr := net.UDPAddr{Port: group.Port}
	packetConn, err := cfg.ListenPacket(ctx, network, bindAddr.String())
	if err != nil {
		err = fmt.Errorf("%w: failed to bind multicast port %d: %w", protocol.ErrIOFailure, group.Port, err)
		return
	}
	udpConn := packetConn.(*net.UDPConn)

	conn = &MulticastConn{
		UDPConn:   udpConn,
		Group:     group,
		Interface: iface,
	}

	if network == "udp4" {
		err = conn.joinIPv4(ttl)
	} else {
		err = conn.joinIPv6(ttl)
	}
	if err != nil {
		udpConn.Close()
		conn = nil
		err = fmt.Errorf("%w: failed joining group %s: %w", protocol.ErrIOFailure, group.IP, err)
		return
	}
	return
}

func (conn *MulticastConn) joinIPv4(ttl int) (err error) {
	pc := ipv4.NewPacketConn(conn.UDPConn)
	groupAddr := &net.UDPAddr{IP: conn.Group.IP}

	err = pc.JoinGroup(conn.Interface, groupAddr)
	if err != nil {
		return
	}
	conn.leave = func() error { return pc.LeaveGroup(conn.Interface, groupAddr) }

	if conn.Interface != nil {
		err = pc.SetMulticastInterface(conn.Interface)
		if err != nil {
			return
		}
	}
	err = pc.SetMulticastTTL(ttl)
	if err != nil {
		return
	}
	err = pc.SetMulticastLoopback(true)
	return
}

func (conn *MulticastConn) joinIPv6(hopLimit int) (err error) {
	pc := ipv6.NewPacketConn(conn.UDPConn)
	groupAddr := &net.UDPAddr{IP: conn.Group.IP}

	err = pc.JoinGroup(conn.Interface, groupAddr)
	if err != nil {
		return
	}
	conn.leave = func() error { return pc.LeaveGroup(conn.Interface, groupAddr) }

	if conn.Interface != nil {
		err = pc.SetMulticastInterface(conn.Interface)
		if err != nil {
			return
		}
	}
	err = pc.SetMulticastHopLimit(hopLimit)
	if err != nil {
		return
	}
	err = pc.SetMulticastLoopback(true)
	return
}

// Leaves the group (best effort) and closes the socket
func (conn *MulticastConn) Close() (err error) {
	var leaveErr error
	if conn.leave != nil {
		leaveErr = conn.leave()
		conn.leave = nil
	}
	err = conn.UDPConn.Close()
	if err == nil && leaveErr != nil {
		err = fmt.Errorf("failed leaving multicast group: %w", leaveErr)
	}
	return
}
