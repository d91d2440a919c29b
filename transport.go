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

import "context"

// Pinger is the liveness-probing capability a transport must give every
// Contact. The routing table never assumes a wire format; it only needs
// to know whether the remote side is still reachable (spec.md §6 "From
// the transport (provider)").
type Pinger interface {
	// Ping attempts a single liveness probe. A nil error means the
	// remote responded; any other error — conventionally a
	// *TimeoutError — means it did not, within whatever deadline the
	// implementation or ctx enforces.
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function to the Pinger interface, the way
// http.HandlerFunc adapts a function to http.Handler. Useful for tests
// and for simple in-process transports.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// noPinger is used for contacts constructed without a transport
// capability (e.g. the local node, or test fixtures); any probe against
// it fails closed rather than panicking.
type noPinger struct{ guid NodeID }

func (n noPinger) Ping(context.Context) error { return &TimeoutError{GUID: n.guid} }
