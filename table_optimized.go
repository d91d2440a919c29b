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
	"time"

	"github.com/hashicorp/golang-lru"
)

// cacheTable is the optimized policy (spec.md §4.2 "add_contact
// (optimized)"): a full, non-splittable bucket queues the new contact in
// a per-bucket replacement cache instead of pinging anyone; removing a
// contact promotes the cache's most-recently-seen entry into the
// vacated slot.
//
// Each bucket's cache is a github.com/hashicorp/golang-lru.Cache capped
// at k entries: Add-on-existing-key already refreshes recency the way
// spec.md's "remove, then append" discipline requires, and a bounded
// Cache can never accumulate the len()-based over-cap bug spec.md §9
// documents as a known defect of the original implementation.
type cacheTable struct {
	*core
	caches map[int]*lru.Cache
}

// NewOptimizedTable constructs a routing table using the optimized,
// replacement-cache eviction policy.
func NewOptimizedTable(cfg Config) Table {
	return &cacheTable{core: newCore(cfg), caches: make(map[int]*lru.Cache)}
}

func (t *cacheTable) Self() NodeID { return t.cfg.Self }

func (t *cacheTable) cacheFor(i int) *lru.Cache {
	c, ok := t.caches[i]
	if !ok {
		c, _ = lru.New(t.cfg.BucketSize) // size always > 0, withDefaults guarantees it
		t.caches[i] = c
	}
	return c
}

// promoteFromCache pops the most-recently-queued contact out of bucket
// i's replacement cache, or returns nil if it is empty. golang-lru's
// Keys() returns oldest-to-newest, so the tail of that slice is the
// most recent entry (spec.md: "pop its tail (most recent)").
func (t *cacheTable) promoteFromCache(i int) *Contact {
	c, ok := t.caches[i]
	if !ok {
		return nil
	}
	keys := c.Keys()
	if len(keys) == 0 {
		return nil
	}
	last := keys[len(keys)-1]
	v, ok := c.Get(last)
	if !ok {
		return nil
	}
	c.Remove(last)
	return v.(*Contact)
}

// splitCacheAware wraps core.splitBucket to keep each bucket's
// replacement cache aligned with its bucket by identity rather than by
// position: entries that now belong to the new upper bucket move to its
// cache, and every cache at an index above the split point shifts up by
// one along with the buckets slice it was tracking.
func (t *cacheTable) splitCacheAware(i int) {
	mid := t.splitBucket(i)

	old, hasOld := t.caches[i]
	var moveUp []*Contact
	if hasOld {
		for _, k := range old.Keys() {
			ct := k.(NodeID)
			v, _ := old.Get(k)
			if ct.big().Cmp(mid) >= 0 {
				old.Remove(k)
				moveUp = append(moveUp, v.(*Contact))
			}
		}
	}

	shifted := make(map[int]*lru.Cache, len(t.caches))
	for idx, c := range t.caches {
		if idx > i {
			shifted[idx+1] = c
		} else {
			shifted[idx] = c
		}
	}
	t.caches = shifted

	if len(moveUp) > 0 {
		next := t.cacheFor(i + 1)
		for _, ct := range moveUp {
			next.Add(ct.GUID, ct)
		}
	}
}

func (t *cacheTable) AddContact(ctx context.Context, c *Contact) error {
	if c.GUID == t.cfg.Self {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertLocked(c)
}

// insertLocked implements the optimized add_contact body. Callers must
// hold t.mu.
func (t *cacheTable) insertLocked(c *Contact) error {
	i := t.kbucketIndex(c.GUID)
	b := t.buckets[i]

	if existing, err := b.GetContact(c.GUID); err == nil {
		if !existing.Address.Equal(c.Address) {
			// Rebind: the guid now answers at a different address.
			// Remove the stale entry (which may itself promote a
			// cached contact into the vacated slot) and reattempt
			// insertion of c using the same full-bucket logic.
			t.removeLocked(existing.GUID)
			return t.insertLocked(c)
		}
		if err := b.AddContact(c, t.cfg.Clock()); err != nil {
			return err
		}
		c.FailedRPCs = 0
		return nil
	}

	if !t.reserveTableIP(c) {
		return nil
	}
	if err := b.AddContact(c, t.cfg.Clock()); err == nil {
		c.FailedRPCs = 0
		t.metrics.contactsAdded.Inc(1)
		return nil
	} else if !errors.Is(err, ErrBucketFull) {
		t.releaseTableIP(c)
		return err
	}
	t.releaseTableIP(c) // didn't make it into the bucket

	if b.KeyInRange(t.cfg.Self) {
		t.splitCacheAware(i)
		return t.insertLocked(c)
	}

	t.cacheFor(i).Add(c.GUID, c)
	return nil
}

// removeLocked implements remove_contact's cache-promotion side effect.
// Callers must hold t.mu.
func (t *cacheTable) removeLocked(guid NodeID) {
	i := t.kbucketIndex(guid)
	removed, err := t.buckets[i].GetContact(guid)
	if err != nil {
		return
	}
	if t.buckets[i].RemoveContact(guid) != nil {
		return
	}
	t.releaseTableIP(removed)

	promoted := t.promoteFromCache(i)
	if promoted == nil {
		return
	}
	if !t.reserveTableIP(promoted) {
		return // table-wide cap still full; leave the slot empty
	}
	if err := t.buckets[i].AddContact(promoted, t.cfg.Clock()); err != nil {
		t.releaseTableIP(promoted)
		return
	}
	t.metrics.cachePromotions.Inc(1)
}

func (t *cacheTable) RemoveContact(guid NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(guid)
	return nil
}

func (t *cacheTable) GetContact(guid NodeID) (*Contact, error) { return t.getContact(guid) }
func (t *cacheTable) FindCloseNodes(target NodeID, count int, exclude *NodeID) []*Contact {
	return t.findCloseNodes(target, count, exclude)
}
func (t *cacheTable) GetRefreshList(startIndex int, force bool) []string {
	return t.getRefreshList(startIndex, force)
}
func (t *cacheTable) TouchKBucket(id NodeID) { t.touchKBucket(id) }
func (t *cacheTable) Len() int               { return t.len() }
func (t *cacheTable) BucketCount() int       { return t.bucketCount() }
func (t *cacheTable) BucketSizes() []int     { return t.bucketSizes() }
func (t *cacheTable) BucketAges() []time.Duration { return t.bucketAges() }
