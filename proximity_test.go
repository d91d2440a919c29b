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
	"reflect"
	"testing"
)

func TestSortByDistance(t *testing.T) {
	target := idN(0)
	far := NewContact(idN(200), Address{}, nil)
	near := NewContact(idN(1), Address{}, nil)
	mid := NewContact(idN(50), Address{}, nil)

	got := SortByDistance(target, []*Contact{far, near, mid})
	want := []*Contact{near, mid, far}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByDistance = %v, want %v", guids(got), guids(want))
	}
}

func TestProximityListBound(t *testing.T) {
	target := idN(0)
	p := NewProximityList(target, 2)
	p.Add(NewContact(idN(5), Address{}, nil))
	p.Add(NewContact(idN(1), Address{}, nil))
	p.Add(NewContact(idN(9), Address{}, nil))
	got := p.Slice()
	if len(got) != 2 {
		t.Fatalf("Slice() len = %d, want 2", len(got))
	}
	if got[0].GUID != idN(1) || got[1].GUID != idN(5) {
		t.Errorf("Slice() = %v, want [1, 5]", guids(got))
	}
}

func TestProximityListReinsertReplaces(t *testing.T) {
	target := idN(0)
	p := NewProximityList(target, 5)
	c := NewContact(idN(1), Address{Host: "old"}, nil)
	p.Add(c)
	updated := NewContact(idN(1), Address{Host: "new"}, nil)
	p.Add(updated)
	got := p.Slice()
	if len(got) != 1 || got[0].Host != "new" {
		t.Fatalf("Slice() after reinsert = %v", got)
	}
}

func guids(cs []*Contact) []NodeID {
	out := make([]NodeID, len(cs))
	for i, c := range cs {
		out[i] = c.GUID
	}
	return out
}
