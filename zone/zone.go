// Package zone builds and validates the in-memory zone tree of a
// name-service zone database.
package zone

import (
	"github.com/scott/zonedb/record"
	"github.com/scott/zonedb/source"
)

// Zone is one node in the zone tree: a namespace with its records, source
// policies, and child zones. Zones own their records and children; sources
// are references into the load-wide pools.
type Zone struct {
	// Namespace is the label this zone introduces relative to its parent.
	// Empty only at the root.
	Namespace string
	Records   []record.Record
	Recursion []*source.RecursionSource
	Allow     []*source.RequestSource
	Children  []*Zone
	Parent    *Zone
}

// Host returns the fully-qualified name of the zone: its namespace joined
// with its ancestors' namespaces. The root's host is ".".
func (z *Zone) Host() string {
	if z.Parent == nil {
		return z.Namespace + "."
	}
	return z.Namespace + z.Parent.Host()
}

// Walk visits z and every descendant in depth-first pre-order.
func (z *Zone) Walk(fn func(*Zone)) {
	fn(z)
	for _, child := range z.Children {
		child.Walk(fn)
	}
}
