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

package kadroute

import (
	"context"
	"net"
	"strconv"
)

// Address is the opaque transport address for a Contact: host, port, and
// any identity fields the transport requires. It is compared by value
// equality (spec.md §3) — two addresses that differ in host, port, or IP
// are a rebind even if they otherwise refer to the same logical contact.
type Address struct {
	Host string
	Port int
	// IP is optional. When set it feeds the per-bucket/per-table
	// subnet-diversity cap (see internal/netset); contacts whose
	// transport has no routable IP (e.g. an in-process test transport)
	// simply opt out of that cap.
	IP net.IP
}

// Equal reports whether two addresses are the same by value.
func (a Address) Equal(b Address) bool {
	return a.Host == b.Host && a.Port == b.Port && a.IP.Equal(b.IP)
}

func (a Address) String() string {
	if a.Host == "" && a.Port == 0 {
		return "<no address>"
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Contact is a known remote peer: identity, address, and liveness
// bookkeeping (spec.md §3). Two contacts are identical iff their GUIDs
// match; Address may change across re-insertions of the same GUID (a
// rebind, handled specially by the optimized table).
type Contact struct {
	GUID NodeID
	Address
	// FailedRPCs counts consecutive failed remote-procedure calls. The
	// optimized table resets it to 0 on every successful (re)insertion;
	// the base table leaves it unchanged.
	FailedRPCs int

	pinger Pinger
}

// NewContact builds a Contact with the given liveness-probing capability.
// If pinger is nil, the contact fails every probe (useful for fixtures
// that are never expected to be pinged).
func NewContact(guid NodeID, addr Address, pinger Pinger) *Contact {
	if pinger == nil {
		pinger = noPinger{guid: guid}
	}
	return &Contact{GUID: guid, Address: addr, pinger: pinger}
}

// Ping initiates a liveness probe via the contact's transport capability.
func (c *Contact) Ping(ctx context.Context) error {
	return c.pinger.Ping(ctx)
}
