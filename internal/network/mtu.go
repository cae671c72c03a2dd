package network

import (
	"fmt"
	"net"
	"strings"
)

const (
	defaultMTU  int = 1500
	ip4Overhead int = 60 // maximum header with options
	ip6Overhead int = 80 // base header plus common extension headers
	udpOverhead int = 8
)

// Total IP and UDP header overhead for destination's address family
func getTransportOverhead(destinationIP net.IP) (overhead int, err error) {
	switch {
	case destinationIP == nil:
		err = fmt.Errorf("missing destination address")
	case destinationIP.To4() != nil:
		overhead = ip4Overhead + udpOverhead
	default:
		overhead = ip6Overhead + udpOverhead
	}
	return
}

// Largest datagram payload that fits the sending interface MTU.
// Uses iface when known, otherwise the interface routing towards destination,
// otherwise a common MTU across all non-loopback interfaces.
func FindSendingMaxUDPPayload(destination string, iface *net.Interface) (maxPayloadSize int, err error) {
	host := destination
	if splitHost, _, splitErr := net.SplitHostPort(destination); splitErr == nil {
		host = splitHost
	}
	destinationIP := net.ParseIP(strings.Trim(host, "[]"))
	if destinationIP == nil {
		err = fmt.Errorf("unsupported destination address '%v'", destination)
		return
	}

	overhead, err := getTransportOverhead(destinationIP)
	if err != nil {
		err = fmt.Errorf("failed to retrieve transport layer overhead: %w", err)
		return
	}

	var mtu int
	if iface != nil {
		mtu = iface.MTU
	} else if routed, routeErr := getInterfaceForDestination(destinationIP.String()); routeErr == nil {
		mtu = routed.MTU
	} else {
		mtu = commonInterfaceMTU(destinationIP.IsLoopback())
	}

	if mtu <= 0 {
		mtu = defaultMTU
	}
	maxPayloadSize = mtu - overhead
	return
}

// MTU shared by every candidate interface, 0 when they differ
func commonInterfaceMTU(loopback bool) (commonMTU int) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}
	for _, iface := range ifaces {
		if (iface.Flags&net.FlagLoopback != 0) != loopback {
			continue
		}
		if commonMTU == 0 {
			commonMTU = iface.MTU
		} else if commonMTU != iface.MTU {
			commonMTU = 0
			return
		}
	}
	return
}
