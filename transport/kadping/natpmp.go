// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package kadping

import (
	"fmt"
	"net"
	"time"

	natpmp "github.com/jackpal/go-nat-pmp"

	"github.com/huin/goupnp/dcps/internetgateway2"
)

// PortMapper requests a forwarded external port for this node's UDP
// socket, trying UPnP IGD first and falling back to NAT-PMP — the same
// two-protocol order the teacher's discovery layer uses for reachability
// behind a home router.
type PortMapper interface {
	// AddMapping requests that external UDP traffic to extPort be
	// forwarded to this host's intPort, valid for lifetime.
	AddMapping(desc string, intPort, extPort int, lifetime time.Duration) error
	// ExternalIP returns the gateway's external address.
	ExternalIP() (net.IP, error)
}

// DiscoverPortMapper probes the LAN for a UPnP IGD device and falls back
// to a NAT-PMP gateway at the default router address if none answers.
func DiscoverPortMapper() (PortMapper, error) {
	if m, err := discoverUPnP(); err == nil {
		return m, nil
	}
	return discoverNATPMP()
}

type upnpMapper struct {
	client *internetgateway2.WANIPConnection1
}

func discoverUPnP() (PortMapper, error) {
	clients, errs, err := internetgateway2.NewWANIPConnection1Clients()
	if err != nil {
		return nil, fmt.Errorf("kadping: upnp discovery: %w", err)
	}
	if len(clients) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("kadping: no upnp gateway: %w", errs[0])
		}
		return nil, fmt.Errorf("kadping: no upnp gateway found")
	}
	return &upnpMapper{client: clients[0]}, nil
}

func (m *upnpMapper) AddMapping(desc string, intPort, extPort int, lifetime time.Duration) error {
	localIP, err := localUDPAddrString()
	if err != nil {
		return err
	}
	return m.client.AddPortMapping(
		"", uint16(extPort), "UDP", uint16(intPort), localIP, true, desc, uint32(lifetime/time.Second),
	)
}

func (m *upnpMapper) ExternalIP() (net.IP, error) {
	s, err := m.client.GetExternalIPAddress()
	if err != nil {
		return nil, fmt.Errorf("kadping: upnp external ip: %w", err)
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("kadping: upnp returned unparseable ip %q", s)
	}
	return ip, nil
}

type natpmpMapper struct {
	client *natpmp.Client
}

func discoverNATPMP() (PortMapper, error) {
	gw, err := defaultGateway()
	if err != nil {
		return nil, fmt.Errorf("kadping: nat-pmp: %w", err)
	}
	return &natpmpMapper{client: natpmp.NewClient(gw)}, nil
}

func (m *natpmpMapper) AddMapping(desc string, intPort, extPort int, lifetime time.Duration) error {
	_, err := m.client.AddPortMapping("udp", intPort, extPort, int(lifetime/time.Second))
	if err != nil {
		return fmt.Errorf("kadping: nat-pmp add mapping %s: %w", desc, err)
	}
	return nil
}

func (m *natpmpMapper) ExternalIP() (net.IP, error) {
	res, err := m.client.GetExternalAddress()
	if err != nil {
		return nil, fmt.Errorf("kadping: nat-pmp external ip: %w", err)
	}
	return net.IP(res.ExternalIPAddress[:]), nil
}

// defaultGateway guesses the LAN gateway by taking the local IPv4 address
// used for a route to a public address and setting its last octet to 1,
// without actually sending anything (a connected UDP socket just resolves
// the local routing table).
func defaultGateway() (net.IP, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:53")
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	local := conn.LocalAddr().(*net.UDPAddr).IP.To4()
	if local == nil {
		return nil, fmt.Errorf("no ipv4 local address")
	}
	gw := make(net.IP, 4)
	copy(gw, local)
	gw[3] = 1
	return gw, nil
}

func localUDPAddrString() (string, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:53")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
