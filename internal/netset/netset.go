// Package netset bounds how many addresses from the same IP subnet may be
// admitted into a set. It is adapted from the teacher's
// p2p/distip.DistinctNetSet (ethereumproject-go-ethereum), trimmed to the
// diversity-cap mechanism this module uses — the relaying/LAN-classifying
// helpers (IsLAN, IsSpecialNetwork, CheckRelayIP) are dropped because
// nothing in kadroute relays UDP packets on another host's behalf.
package netset

import (
	"bytes"
	"fmt"
	"net"
	"sort"
)

// DistinctNetSet tracks IPs, ensuring that at most Limit of them fall
// into the same network range (the first Subnet bits in common).
type DistinctNetSet struct {
	Subnet uint // number of common prefix bits
	Limit  uint // maximum number of IPs in each subnet

	members map[string]uint
	buf     net.IP
}

// Add adds an IP address to the set. It returns false (and does not add
// the IP) if the number of existing IPs in that subnet already meets the
// limit.
func (s *DistinctNetSet) Add(ip net.IP) bool {
	key := string(s.key(ip))
	n := s.members[key]
	if n < s.Limit {
		s.members[key] = n + 1
		return true
	}
	return false
}

// Remove removes one occurrence of ip from the set.
func (s *DistinctNetSet) Remove(ip net.IP) {
	key := string(s.key(ip))
	if n, ok := s.members[key]; ok {
		if n == 1 {
			delete(s.members, key)
		} else {
			s.members[key] = n - 1
		}
	}
}

// Contains reports whether ip is tracked in the set.
func (s DistinctNetSet) Contains(ip net.IP) bool {
	_, ok := s.members[string(s.key(ip))]
	return ok
}

// Len returns the number of tracked IPs.
func (s DistinctNetSet) Len() uint {
	n := uint(0)
	for _, i := range s.members {
		n += i
	}
	return n
}

// key encodes the map key for an address into a temporary buffer. The
// first byte distinguishes IPv4 from IPv6; the remainder is the IP
// truncated to Subnet bits.
func (s *DistinctNetSet) key(ip net.IP) net.IP {
	if s.members == nil {
		s.members = make(map[string]uint)
		s.buf = make(net.IP, 17)
	}
	typ := byte('6')
	if ip4 := ip.To4(); ip4 != nil {
		typ, ip = '4', ip4
	}
	bits := s.Subnet
	if bits > uint(len(ip)*8) {
		bits = uint(len(ip) * 8)
	}
	nb := int(bits / 8)
	mask := ^byte(0xFF >> (bits % 8))
	s.buf[0] = typ
	buf := append(s.buf[:1], ip[:nb]...)
	if nb < len(ip) && mask != 0 {
		buf = append(buf, ip[nb]&mask)
	}
	return buf
}

// String implements fmt.Stringer.
func (s DistinctNetSet) String() string {
	var buf bytes.Buffer
	buf.WriteString("{")
	keys := make([]string, 0, len(s.members))
	for k := range s.members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		var ip net.IP
		if k[0] == '4' {
			ip = make(net.IP, 4)
		} else {
			ip = make(net.IP, 16)
		}
		copy(ip, k[1:])
		fmt.Fprintf(&buf, "%v×%d", ip, s.members[k])
		if i != len(keys)-1 {
			buf.WriteString(" ")
		}
	}
	buf.WriteString("}")
	return buf.String()
}
