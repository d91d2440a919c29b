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

import "github.com/rcrowley/go-metrics"

// opMetrics counts routing-table operations the way the teacher's
// p2p/metrics.go counts connection traffic — a handful of
// GetOrRegisterCounter calls against an injected registry, never a
// package-global singleton the core secretly depends on (spec.md §9:
// "there is none intrinsic to the core").
type opMetrics struct {
	contactsAdded     metrics.Counter
	bucketsSplit      metrics.Counter
	headPingEvictions metrics.Counter
	cachePromotions   metrics.Counter
	refreshRuns       metrics.Counter
}

func newOpMetrics(registry metrics.Registry, namespace string) *opMetrics {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	get := func(name string) metrics.Counter {
		return metrics.GetOrRegisterCounter(namespace+"."+name, registry)
	}
	return &opMetrics{
		contactsAdded:     get("contacts_added"),
		bucketsSplit:      get("buckets_split"),
		headPingEvictions: get("head_ping_evictions"),
		cachePromotions:   get("cache_promotions"),
		refreshRuns:       get("refresh_runs"),
	}
}
