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
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kadcore/kadroute"
)

func TestTransportPingRoundTrip(t *testing.T) {
	a, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()
	b, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	pinger := a.Pinger(b.LocalAddr().(*net.UDPAddr))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pinger.Ping(ctx))
}

func TestTransportPingTimesOutAgainstDeadSocket(t *testing.T) {
	a, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()

	dead, err := net.ResolveUDPAddr("udp", "127.0.0.1:1")
	require.NoError(t, err)
	pinger := a.Pinger(dead)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = pinger.Ping(ctx)
	require.Error(t, err)
	var timeoutErr *kadroute.TimeoutError
	require.True(t, errors.As(err, &timeoutErr) || errors.Is(err, context.DeadlineExceeded))
}

func TestTransportCloseUnblocksPendingPing(t *testing.T) {
	a, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	unreachable, err := net.ResolveUDPAddr("udp", "127.0.0.1:1")
	require.NoError(t, err)
	pinger := a.Pinger(unreachable)

	done := make(chan error, 1)
	go func() {
		done <- pinger.Ping(context.Background())
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, a.Close())

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("ping did not unblock after Close")
	}
}
