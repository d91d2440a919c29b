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
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/rcrowley/go-metrics"

	"github.com/kadcore/kadroute/internal/netset"
)

// Verbosity levels for glog.V, matching the teacher's own
// glog.V(logger.Detail)/glog.V(logger.Debug) call sites in
// p2p/discover/table.go.
const (
	vDebug  glog.Level = 1
	vDetail glog.Level = 2
)

const (
	// DefaultBucketSize is k, the canonical per-bucket capacity.
	DefaultBucketSize = 20
	// DefaultRefreshTimeout is the canonical bucket staleness window.
	DefaultRefreshTimeout = 3600 * time.Second
)

// Table is the shared contract for both routing-table eviction policies
// (spec.md §9: "express as a single interface with two implementations,
// not inheritance of mutable state"). Implementations: the base/liveness
// policy (NewTable) and the optimized/replacement-cache policy
// (NewOptimizedTable).
type Table interface {
	// AddContact inserts or refreshes c. It is the only operation that
	// may block, awaiting a liveness probe (spec.md §5).
	AddContact(ctx context.Context, c *Contact) error
	// GetContact returns the known contact with the given guid, or
	// ErrNotPresent.
	GetContact(guid NodeID) (*Contact, error)
	// RemoveContact removes guid. It is a no-op, not an error, if the
	// guid is not known (spec.md §7).
	RemoveContact(guid NodeID) error
	// FindCloseNodes returns contacts near target. See SPEC_FULL.md §10
	// for the resolved semantics of count.
	FindCloseNodes(target NodeID, count int, exclude *NodeID) []*Contact
	// GetRefreshList returns hex-encoded random ids, one per stale (or,
	// if force, every) bucket at or beyond startIndex.
	GetRefreshList(startIndex int, force bool) []string
	// TouchKBucket marks the bucket covering id as freshly accessed.
	TouchKBucket(id NodeID)
	// Self returns the local node id this table was constructed with.
	Self() NodeID
	// Len returns the total number of stored contacts.
	Len() int
	// BucketCount returns the current number of buckets, mostly useful
	// for tests and the cmd/kadroute add command's summary line.
	BucketCount() int
	// BucketSizes returns the contact count of each bucket, in index
	// order, for introspection (cmd/kadroute watch).
	BucketSizes() []int
	// BucketAges returns how long it has been since each bucket was
	// last touched, in index order.
	BucketAges() []time.Duration
}

// Config configures a routing table at construction time (spec.md §6).
type Config struct {
	// Self is parent_node_id: the local node's identity, never stored
	// as a contact (T4).
	Self NodeID
	// Namespace is the market/namespace identifier from spec.md §6 —
	// opaque configuration, not interpreted by the table. It is used
	// only to scope this table's metrics.
	Namespace string
	// BucketSize is k. Zero selects DefaultBucketSize.
	BucketSize int
	// RefreshTimeout is the staleness window used by GetRefreshList.
	// Zero selects DefaultRefreshTimeout.
	RefreshTimeout time.Duration
	// Clock returns the current time; nil selects time.Now. Tests
	// inject a fixed/stepped clock here.
	Clock func() time.Time
	// Metrics is the registry operation counters are recorded against;
	// nil selects metrics.DefaultRegistry.
	Metrics metrics.Registry

	// TableIPLimit/TableIPSubnet and BucketIPLimit/BucketIPSubnet
	// configure the optional subnet-diversity guard (SPEC_FULL.md
	// §8.1). A zero limit disables the corresponding cap.
	TableIPLimit, TableIPSubnet   uint
	BucketIPLimit, BucketIPSubnet uint
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BucketSize <= 0 {
		out.BucketSize = DefaultBucketSize
	}
	if out.RefreshTimeout <= 0 {
		out.RefreshTimeout = DefaultRefreshTimeout
	}
	if out.Clock == nil {
		out.Clock = time.Now
	}
	if out.Namespace == "" {
		out.Namespace = "kadroute"
	}
	return out
}

// core holds the state and algorithms shared by both table policies:
// the bucket tree, splitting, indexing, the neighborhood search, and
// refresh bookkeeping. It has no AddContact/RemoveContact of its own —
// those differ by policy and live on liveTable/cacheTable, which embed
// *core for the shared mechanics (composition, not a mutable-state
// inheritance hierarchy, per spec.md §9).
type core struct {
	mu             sync.Mutex
	cfg            Config
	buckets        []*KBucket
	metrics        *opMetrics
	tableIPs       *netset.DistinctNetSet
}

func newCore(cfg Config) *core {
	cfg = cfg.withDefaults()
	c := &core{
		cfg:     cfg,
		metrics: newOpMetrics(cfg.Metrics, cfg.Namespace),
	}
	if cfg.TableIPLimit > 0 {
		c.tableIPs = &netset.DistinctNetSet{Subnet: cfg.TableIPSubnet, Limit: cfg.TableIPLimit}
	}
	full := new(big.Int).Lsh(big.NewInt(1), B)
	c.buckets = []*KBucket{newKBucket(big.NewInt(0), full, cfg.BucketSize, cfg.BucketIPLimit, cfg.BucketIPSubnet, cfg.Clock())}
	return c
}

// kbucketIndex returns the index i such that buckets[i].KeyInRange(id).
// By T1-T3 exactly one such index exists; zero or more than one means an
// invariant has been violated, which is fatal (spec.md §7).
func (c *core) kbucketIndex(id NodeID) int {
	v := id.big()
	// range_max values are monotonically increasing (T2/T3), so a
	// binary search for the first bucket whose rangeMax exceeds id
	// locates the unique covering bucket.
	i := sort.Search(len(c.buckets), func(i int) bool {
		return c.buckets[i].rangeMax.Cmp(v) > 0
	})
	if i >= len(c.buckets) || !c.buckets[i].KeyInRange(id) {
		matches := 0
		for _, b := range c.buckets {
			if b.KeyInRange(id) {
				matches++
			}
		}
		panic(&InvariantViolationError{GUID: id, Matches: matches})
	}
	return i
}

// splitBucket implements spec.md §4.2 split_bucket. Precondition: the
// bucket at i is full and contains cfg.Self; callers must check this
// (AddContact does, before calling). It returns the split point so that
// callers tracking auxiliary per-bucket state (the optimized table's
// replacement caches) can repartition it the same way.
func (c *core) splitBucket(i int) *big.Int {
	old := c.buckets[i]
	lo, hi := old.rangeMin, old.rangeMax
	mid := new(big.Int).Sub(hi, lo)
	mid.Rsh(mid, 1)
	mid.Add(mid, lo)

	next := newKBucket(mid, hi, c.cfg.BucketSize, c.cfg.BucketIPLimit, c.cfg.BucketIPSubnet, c.cfg.Clock())
	old.rangeMax = new(big.Int).Set(mid)

	c.buckets = append(c.buckets, nil)
	copy(c.buckets[i+2:], c.buckets[i+1:])
	c.buckets[i+1] = next

	var keep []*Contact
	for _, ct := range old.contacts {
		if ct.GUID.big().Cmp(mid) >= 0 {
			if old.ips != nil && ct.IP != nil {
				old.ips.Remove(ct.IP)
			}
			_ = next.AddContact(ct, c.cfg.Clock())
		} else {
			keep = append(keep, ct)
		}
	}
	old.contacts = keep
	c.metrics.bucketsSplit.Inc(1)
	glog.V(vDetail).Infof("kadroute: split bucket %d at %x", i, mid)
	return mid
}

// findCloseNodes implements spec.md §4.2 FindCloseNodes, including the
// count-truncation resolution from SPEC_FULL.md §10.
func (c *core) findCloseNodes(target NodeID, count int, exclude *NodeID) []*Contact {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.kbucketIndex(target)
	k := c.cfg.BucketSize
	result := c.buckets[i].GetContacts(k, exclude)

	for step := 1; len(result) < k; step++ {
		lo, hi := i-step, i+step
		loOK := lo >= 0
		hiOK := hi < len(c.buckets)
		if !loOK && !hiOK {
			break
		}
		if loOK {
			result = append(result, c.buckets[lo].GetContacts(k-len(result), exclude)...)
		}
		if hiOK && len(result) < k {
			result = append(result, c.buckets[hi].GetContacts(k-len(result), exclude)...)
		}
	}

	if count > 0 && count < len(result) {
		result = result[:count]
	}
	return result
}

// getRefreshList implements spec.md §4.2 GetRefreshList.
func (c *core) getRefreshList(startIndex int, force bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	now := c.cfg.Clock()
	for i := startIndex; i < len(c.buckets); i++ {
		b := c.buckets[i]
		if force || now.Sub(b.LastAccessed()) >= c.cfg.RefreshTimeout {
			out = append(out, randomIDInRange(b.rangeMin, b.rangeMax).Hex())
		}
	}
	c.metrics.refreshRuns.Inc(1)
	return out
}

func (c *core) touchKBucket(id NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.kbucketIndex(id)
	c.buckets[i].lastAccessed = c.cfg.Clock()
}

func (c *core) getContact(guid NodeID) (*Contact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.kbucketIndex(guid)
	return c.buckets[i].GetContact(guid)
}

func (c *core) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.buckets {
		n += b.Len()
	}
	return n
}

func (c *core) bucketCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

func (c *core) bucketSizes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sizes := make([]int, len(c.buckets))
	for i, b := range c.buckets {
		sizes[i] = b.Len()
	}
	return sizes
}

// bucketAges returns how long it has been since each bucket was last
// touched, for the watch dashboard's staleness display.
func (c *core) bucketAges() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.cfg.Clock()
	ages := make([]time.Duration, len(c.buckets))
	for i, b := range c.buckets {
		ages[i] = now.Sub(b.LastAccessed())
	}
	return ages
}

// reserveTableIP enforces the table-wide subnet cap (SPEC_FULL.md §8.1),
// independent of each bucket's own per-bucket cap. Contacts without an
// IP opt out. Must be called with c.mu held.
func (c *core) reserveTableIP(ct *Contact) bool {
	if c.tableIPs == nil || ct.IP == nil {
		return true
	}
	return c.tableIPs.Add(ct.IP)
}

// releaseTableIP undoes reserveTableIP. Must be called with c.mu held.
func (c *core) releaseTableIP(ct *Contact) {
	if c.tableIPs == nil || ct.IP == nil {
		return
	}
	c.tableIPs.Remove(ct.IP)
}

func randomIDInRange(min, max *big.Int) NodeID {
	span := new(big.Int).Sub(max, min)
	if span.Sign() <= 0 {
		return idFromBig(min)
	}
	n, err := cryptoRandInt(span)
	if err != nil {
		return idFromBig(min)
	}
	return idFromBig(new(big.Int).Add(min, n))
}

// liveTable is the base/liveness-probing policy (spec.md §4.2
// "add_contact (base)"). A full, non-splittable bucket's head is pinged;
// if it times out, the head is evicted and the new contact takes its
// place; if it responds, the new contact is dropped.
type liveTable struct{ *core }

// NewTable constructs a routing table using the base eviction policy.
func NewTable(cfg Config) Table {
	return &liveTable{core: newCore(cfg)}
}

func (t *liveTable) Self() NodeID { return t.cfg.Self }

func (t *liveTable) AddContact(ctx context.Context, c *Contact) error {
	if c.GUID == t.cfg.Self {
		return nil // T4: self-exclusion
	}
	for {
		t.mu.Lock()
		i := t.kbucketIndex(c.GUID)
		b := t.buckets[i]
		already, _ := b.GetContact(c.GUID)
		reserved := false
		if already == nil {
			if !t.reserveTableIP(c) {
				t.mu.Unlock()
				return nil // table-wide subnet cap rejects the insert
			}
			reserved = true
		}
		err := b.AddContact(c, t.cfg.Clock())
		if err == nil {
			t.mu.Unlock()
			t.metrics.contactsAdded.Inc(1)
			return nil
		}
		if reserved {
			t.releaseTableIP(c) // bucket rejected it; undo the reservation
		}
		if !errors.Is(err, ErrBucketFull) {
			t.mu.Unlock()
			return err
		}
		if b.KeyInRange(t.cfg.Self) {
			t.splitBucket(i)
			t.mu.Unlock()
			continue // retry the insertion against the post-split tree
		}
		head := b.Head()
		t.mu.Unlock()

		// The ping happens outside the lock (spec.md §5); its
		// continuation re-enters the table and is idempotent against
		// concurrent removal of the same head.
		pingErr := head.Ping(ctx)
		var timeout *TimeoutError
		if errors.As(pingErr, &timeout) {
			t.mu.Lock()
			if t.buckets[t.kbucketIndex(head.GUID)].RemoveContact(head.GUID) == nil {
				t.releaseTableIP(head)
			}
			t.mu.Unlock()
			t.metrics.headPingEvictions.Inc(1)
			glog.V(vDetail).Infof("kadroute: evicted unresponsive head %x", head.GUID)
			continue // retry the insertion now that a slot is free
		}
		// Head answered (or the probe failed for a reason other than
		// timeout, e.g. cancellation): the new contact is dropped.
		return nil
	}
}

func (t *liveTable) RemoveContact(guid NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.kbucketIndex(guid)
	removed, _ := t.buckets[i].GetContact(guid)
	if err := t.buckets[i].RemoveContact(guid); err != nil {
		return nil // absorbed, per spec.md §7
	}
	t.releaseTableIP(removed)
	return nil
}

func (t *liveTable) GetContact(guid NodeID) (*Contact, error) { return t.getContact(guid) }
func (t *liveTable) FindCloseNodes(target NodeID, count int, exclude *NodeID) []*Contact {
	return t.findCloseNodes(target, count, exclude)
}
func (t *liveTable) GetRefreshList(startIndex int, force bool) []string {
	return t.getRefreshList(startIndex, force)
}
func (t *liveTable) TouchKBucket(id NodeID) { t.touchKBucket(id) }
func (t *liveTable) Len() int               { return t.len() }
func (t *liveTable) BucketCount() int       { return t.bucketCount() }
func (t *liveTable) BucketSizes() []int     { return t.bucketSizes() }
func (t *liveTable) BucketAges() []time.Duration { return t.bucketAges() }
