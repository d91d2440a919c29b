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
	"errors"
	"testing"
)

func TestContactPingUsesTransport(t *testing.T) {
	called := false
	p := PingerFunc(func(ctx context.Context) error {
		called = true
		return nil
	})
	c := NewContact(idN(1), Address{Host: "x", Port: 30303}, p)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if !called {
		t.Error("transport Ping was not invoked")
	}
}

func TestContactNilPingerFailsClosed(t *testing.T) {
	c := NewContact(idN(1), Address{}, nil)
	err := c.Ping(context.Background())
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("Ping with nil pinger = %v, want *TimeoutError", err)
	}
}

func TestAddressEqual(t *testing.T) {
	a := Address{Host: "h", Port: 1}
	b := Address{Host: "h", Port: 1}
	c := Address{Host: "h", Port: 2}
	if !a.Equal(b) {
		t.Error("identical addresses should be equal")
	}
	if a.Equal(c) {
		t.Error("differing port should not be equal")
	}
}

func TestAddressString(t *testing.T) {
	a := Address{Host: "10.0.0.1", Port: 30303}
	if got, want := a.String(), "10.0.0.1:30303"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := (Address{}).String(), "<no address>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
