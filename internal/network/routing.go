package network

import (
	"fmt"
	"net"
	"strings"
)

// Determines the interface the kernel would use to reach destination
func getInterfaceForDestination(destination string) (iface *net.Interface, err error) {
	rawIP := strings.TrimPrefix(destination, "[")
	rawIP = strings.TrimSuffix(rawIP, "]")

	destAddr := net.ParseIP(rawIP)
	if destAddr == nil {
		err = fmt.Errorf("invalid destination address: %s", destination)
		return
	}

	// Connected UDP socket sends nothing but resolves the source address
	conn, dialErr := net.Dial("udp", net.JoinHostPort(destAddr.String(), "9"))
	if dialErr != nil {
		err = fmt.Errorf("failed to find interface for destination %s: %w", destAddr, dialErr)
		return
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	iface, err = getInterfaceForAddress(localAddr.IP.String())
	return
}
