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
	"math/big"
	"time"

	"github.com/kadcore/kadroute/internal/netset"
)

// KBucket is a bounded, ordered sequence of contacts covering the
// half-open id range [rangeMin, rangeMax). Index 0 is the
// least-recently-seen (head); the tail is most-recently-seen (spec.md
// §3). Ranges are kept as big.Int because rangeMax for the outermost
// bucket is 2^B, one past the largest representable NodeID.
type KBucket struct {
	rangeMin, rangeMax *big.Int
	capacity           int
	contacts           []*Contact
	lastAccessed       time.Time

	// ips, when non-nil, caps how many contacts from the same subnet
	// this bucket will admit (see internal/netset and SPEC_FULL.md §8.1).
	// It is optional domain-stack hardening, not part of the base
	// invariants I1-I3.
	ips *netset.DistinctNetSet
}

// newKBucket creates an empty bucket covering [min, max).
func newKBucket(min, max *big.Int, capacity int, ipLimit uint, ipSubnet uint, now time.Time) *KBucket {
	b := &KBucket{
		rangeMin:     new(big.Int).Set(min),
		rangeMax:     new(big.Int).Set(max),
		capacity:     capacity,
		lastAccessed: now,
	}
	if ipLimit > 0 {
		b.ips = &netset.DistinctNetSet{Subnet: ipSubnet, Limit: ipLimit}
	}
	return b
}

// KeyInRange reports whether id falls within [rangeMin, rangeMax).
func (b *KBucket) KeyInRange(id NodeID) bool {
	v := id.big()
	return v.Cmp(b.rangeMin) >= 0 && v.Cmp(b.rangeMax) < 0
}

// indexOf returns the position of guid in contacts, or -1.
func (b *KBucket) indexOf(guid NodeID) int {
	for i, c := range b.contacts {
		if c.GUID == guid {
			return i
		}
	}
	return -1
}

// AddContact implements spec.md §4.1: move an existing guid to the tail
// (MRU refresh), append a new one if there is room, or fail with
// ErrBucketFull. now stamps the bucket's last-accessed time; callers
// pass their table's configured clock rather than the wall clock so
// staleness bookkeeping stays testable.
func (b *KBucket) AddContact(c *Contact, now time.Time) error {
	b.lastAccessed = now
	if i := b.indexOf(c.GUID); i >= 0 {
		b.contacts = append(b.contacts[:i], b.contacts[i+1:]...)
		b.contacts = append(b.contacts, c)
		return nil
	}
	if len(b.contacts) >= b.capacity {
		return ErrBucketFull
	}
	if b.ips != nil && c.IP != nil && !b.ips.Add(c.IP) {
		return ErrBucketFull
	}
	b.contacts = append(b.contacts, c)
	return nil
}

// GetContact returns the contact with the given guid, or ErrNotPresent.
func (b *KBucket) GetContact(guid NodeID) (*Contact, error) {
	if i := b.indexOf(guid); i >= 0 {
		return b.contacts[i], nil
	}
	return nil, ErrNotPresent
}

// RemoveContact removes the contact with the given guid, or fails with
// ErrNotPresent.
func (b *KBucket) RemoveContact(guid NodeID) error {
	i := b.indexOf(guid)
	if i < 0 {
		return ErrNotPresent
	}
	removed := b.contacts[i]
	b.contacts = append(b.contacts[:i], b.contacts[i+1:]...)
	if b.ips != nil && removed.IP != nil {
		b.ips.Remove(removed.IP)
	}
	return nil
}

// GetContacts returns up to n contacts in insertion order, excluding
// excludeGUID if it is non-nil. Returns an empty (non-nil) slice for
// n <= 0 or an empty bucket.
func (b *KBucket) GetContacts(n int, excludeGUID *NodeID) []*Contact {
	if n <= 0 {
		return []*Contact{}
	}
	out := make([]*Contact, 0, n)
	for _, c := range b.contacts {
		if len(out) >= n {
			break
		}
		if excludeGUID != nil && c.GUID == *excludeGUID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Len returns the number of contacts currently stored.
func (b *KBucket) Len() int { return len(b.contacts) }

// Head returns the least-recently-seen contact, or nil if empty.
func (b *KBucket) Head() *Contact {
	if len(b.contacts) == 0 {
		return nil
	}
	return b.contacts[0]
}

// LastAccessed returns the time the bucket was last touched, either by
// its creation, an AddContact or an explicit TouchKBucket call.
// RemoveContact does not update it.
func (b *KBucket) LastAccessed() time.Time { return b.lastAccessed }
