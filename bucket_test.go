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
	"errors"
	"math/big"
	"net"
	"testing"
	"time"
)

func testBucket(capacity int) *KBucket {
	full := new(big.Int).Lsh(big.NewInt(1), B)
	return newKBucket(big.NewInt(0), full, capacity, 0, 0, time.Unix(0, 0))
}

func idN(n byte) NodeID {
	var id NodeID
	id[idLen-1] = n
	return id
}

func TestKBucketAddGetRemove(t *testing.T) {
	b := testBucket(2)
	c1 := NewContact(idN(1), Address{Host: "a"}, nil)
	c2 := NewContact(idN(2), Address{Host: "b"}, nil)

	if err := b.AddContact(c1, time.Unix(0, 0)); err != nil {
		t.Fatalf("AddContact(c1): %v", err)
	}
	if err := b.AddContact(c2, time.Unix(0, 0)); err != nil {
		t.Fatalf("AddContact(c2): %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}

	c3 := NewContact(idN(3), Address{Host: "c"}, nil)
	if err := b.AddContact(c3, time.Unix(0, 0)); !errors.Is(err, ErrBucketFull) {
		t.Fatalf("AddContact(c3) = %v, want ErrBucketFull", err)
	}

	got, err := b.GetContact(idN(1))
	if err != nil || got != c1 {
		t.Fatalf("GetContact(1) = %v, %v", got, err)
	}

	if err := b.RemoveContact(idN(1)); err != nil {
		t.Fatalf("RemoveContact(1): %v", err)
	}
	if _, err := b.GetContact(idN(1)); !errors.Is(err, ErrNotPresent) {
		t.Fatalf("GetContact after remove = %v, want ErrNotPresent", err)
	}
	if err := b.RemoveContact(idN(99)); !errors.Is(err, ErrNotPresent) {
		t.Fatalf("RemoveContact(unknown) = %v, want ErrNotPresent", err)
	}
}

func TestKBucketMRUReorder(t *testing.T) {
	b := testBucket(3)
	c1 := NewContact(idN(1), Address{}, nil)
	c2 := NewContact(idN(2), Address{}, nil)
	c3 := NewContact(idN(3), Address{}, nil)
	for _, c := range []*Contact{c1, c2, c3} {
		if err := b.AddContact(c, time.Unix(0, 0)); err != nil {
			t.Fatalf("AddContact: %v", err)
		}
	}
	// Re-add c1: it should move to the tail.
	if err := b.AddContact(c1, time.Unix(0, 0)); err != nil {
		t.Fatalf("re-AddContact(c1): %v", err)
	}
	if b.Head().GUID != idN(2) {
		t.Fatalf("Head() = %x, want bucket head to now be c2", b.Head().GUID)
	}
	contacts := b.GetContacts(3, nil)
	if contacts[len(contacts)-1].GUID != idN(1) {
		t.Fatalf("tail after MRU bump = %x, want c1", contacts[len(contacts)-1].GUID)
	}
}

func TestKBucketKeyInRange(t *testing.T) {
	b := newKBucket(big.NewInt(10), big.NewInt(20), 5, 0, 0, time.Unix(0, 0))
	if !b.KeyInRange(idFromBig(big.NewInt(10))) {
		t.Error("range min should be inclusive")
	}
	if b.KeyInRange(idFromBig(big.NewInt(20))) {
		t.Error("range max should be exclusive")
	}
	if !b.KeyInRange(idFromBig(big.NewInt(15))) {
		t.Error("midpoint should be in range")
	}
}

func TestKBucketGetContactsExcludes(t *testing.T) {
	b := testBucket(3)
	c1 := NewContact(idN(1), Address{}, nil)
	c2 := NewContact(idN(2), Address{}, nil)
	b.AddContact(c1, time.Unix(0, 0))
	b.AddContact(c2, time.Unix(0, 0))
	exclude := idN(1)
	got := b.GetContacts(10, &exclude)
	if len(got) != 1 || got[0].GUID != idN(2) {
		t.Fatalf("GetContacts with exclude = %v, want [c2]", got)
	}
}

func TestKBucketIPDiversityCap(t *testing.T) {
	b := newKBucket(big.NewInt(0), new(big.Int).Lsh(big.NewInt(1), B), 10, 2, 24, time.Unix(0, 0))
	mk := func(n byte, ip string) *Contact {
		return NewContact(idN(n), Address{IP: net.ParseIP(ip)}, nil)
	}
	if err := b.AddContact(mk(1, "10.0.0.1"), time.Unix(0, 0)); err != nil {
		t.Fatalf("AddContact 1: %v", err)
	}
	if err := b.AddContact(mk(2, "10.0.0.2"), time.Unix(0, 0)); err != nil {
		t.Fatalf("AddContact 2: %v", err)
	}
	if err := b.AddContact(mk(3, "10.0.0.3"), time.Unix(0, 0)); !errors.Is(err, ErrBucketFull) {
		t.Fatalf("third contact from same /24 should be rejected, got %v", err)
	}
	// A contact with no IP always opts out of the cap.
	if err := b.AddContact(mk(4, ""), time.Unix(0, 0)); err != nil {
		t.Fatalf("AddContact without IP: %v", err)
	}
}
