package network

import (
	"fmt"
	"net"
	"strings"
)

// Interface by explicit name, else the one routing towards the group, else nil (kernel default)
func ResolveInterface(name string, group net.IP) (iface *net.Interface, err error) {
	if name != "" {
		iface, err = net.InterfaceByName(name)
		if err != nil {
			err = fmt.Errorf("unknown interface %q: %w", name, err)
		}
		return
	}

	routed, routeErr := getInterfaceForDestination(group.String())
	if routeErr == nil && routed.Flags&net.FlagMulticast != 0 {
		iface = routed
	}
	return
}

// Retrieves the network interface corresponding to a specific address
func getInterfaceForAddress(address string) (iface *net.Interface, err error) {
	address = strings.TrimPrefix(address, "[")
	address = strings.TrimSuffix(address, "]")

	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	for _, candidate := range ifaces {
		addrs, addrErr := candidate.Addrs()
		if addrErr != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if ok && ipNet.IP.String() == address {
				found := candidate
				iface = &found
				return
			}
		}
	}

	err = fmt.Errorf("no matching interface found for address %v", address)
	return
}

// Whether ip belongs to this host (loopback or any interface address)
func IsLocalAddress(ip net.IP) (local bool) {
	if ip == nil {
		return
	}
	if ip.IsLoopback() {
		local = true
		return
	}
	_, err := getInterfaceForAddress(ip.String())
	local = err == nil
	return
}
