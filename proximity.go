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

import "sort"

// ProximityList accumulates contacts sorted by increasing XOR distance
// from a target, the way the teacher's own closest accumulator does in
// p2p/discover/table.go's Lookup path. The routing table's own
// FindCloseNodes does not sort its result (see spec.md §4.2); this helper
// exists for callers that need a sorted view, per that same section:
// "callers that require sorted output sort by d(target, c.guid)".
type ProximityList struct {
	target NodeID
	max    int
	items  []*Contact
}

// NewProximityList creates an accumulator bounded to at most max entries.
func NewProximityList(target NodeID, max int) *ProximityList {
	return &ProximityList{target: target, max: max}
}

// Add inserts c in distance order, evicting the farthest entry once the
// list exceeds its bound. Re-adding a guid already present replaces it.
func (p *ProximityList) Add(c *Contact) {
	for i, existing := range p.items {
		if existing.GUID == c.GUID {
			p.items = append(p.items[:i], p.items[i+1:]...)
			break
		}
	}
	i := sort.Search(len(p.items), func(i int) bool {
		return distcmp(p.target, p.items[i].GUID, c.GUID) >= 0
	})
	p.items = append(p.items, nil)
	copy(p.items[i+1:], p.items[i:])
	p.items[i] = c
	if p.max > 0 && len(p.items) > p.max {
		p.items = p.items[:p.max]
	}
}

// Slice returns the accumulated contacts, closest first.
func (p *ProximityList) Slice() []*Contact {
	out := make([]*Contact, len(p.items))
	copy(out, p.items)
	return out
}

// SortByDistance returns a new slice containing contacts sorted by
// increasing distance from target. It is the "caller-facing" sort
// spec.md §4.2 says FindCloseNodes itself does not perform.
func SortByDistance(target NodeID, contacts []*Contact) []*Contact {
	p := NewProximityList(target, len(contacts))
	for _, c := range contacts {
		p.Add(c)
	}
	return p.Slice()
}
