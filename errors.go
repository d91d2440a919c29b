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
	"fmt"
)

// ErrBucketFull is returned by KBucket.AddContact when the bucket is at
// capacity and the contact is not already present.
var ErrBucketFull = errors.New("kadroute: bucket full")

// ErrNotPresent is returned by KBucket/Table lookups and removals that
// find no contact with the given guid. Table.RemoveContact absorbs it
// silently per spec.md §7; Table.GetContact surfaces it to the caller.
var ErrNotPresent = errors.New("kadroute: contact not present")

// TimeoutError is returned by a Pinger when a liveness probe does not
// complete in time. It carries the pingee's guid so the base eviction
// policy knows which head entry to drop.
type TimeoutError struct {
	GUID NodeID
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("kadroute: ping to %s timed out", e.GUID)
}

// Is lets callers use errors.Is(err, ErrTimeout) regardless of which
// guid a concrete *TimeoutError carries.
func (e *TimeoutError) Is(target error) bool {
	_, ok := target.(*TimeoutError)
	return ok
}

// ErrTimeout is a zero-value sentinel for errors.Is comparisons; concrete
// timeouts are always *TimeoutError values carrying a guid.
var ErrTimeout = &TimeoutError{}

// InvariantViolationError reports a broken routing-table invariant —
// kbucketIndex finding zero or more than one covering bucket. Per
// spec.md §7 this is a fatal, not a recoverable, condition: it is
// panicked rather than returned, the same way the teacher treats
// "invariants have been violated" (see original_source's kbucketIndex
// RuntimeError) as a programmer error, not routing-table state.
type InvariantViolationError struct {
	GUID    NodeID
	Matches int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("kadroute: invariant violation: %d buckets claim id %s", e.Matches, e.GUID)
}
