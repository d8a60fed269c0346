package zone

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/scott/zonedb/record"
	"github.com/scott/zonedb/source"
)

// Pools holds the load-wide deduplicated identity pools accumulated while
// building a zone tree, in first-seen order. Sources are referenced by the
// zones that declare them; synthesized PTR records are returned here for the
// consumer to place.
type Pools struct {
	Recursion []*source.RecursionSource
	Allow     []*source.RequestSource
	PTR       []*record.PTR
}

// loader carries the pools and their identity indexes through the recursive
// zone build. One loader serves exactly one load.
type loader struct {
	pools    Pools
	recIndex map[string]*source.RecursionSource
	reqIndex map[string]*source.RequestSource
	ptrSeen  map[string]bool
}

func newLoader() *loader {
	return &loader{
		recIndex: make(map[string]*source.RecursionSource),
		reqIndex: make(map[string]*source.RequestSource),
		ptrSeen:  make(map[string]bool),
	}
}

// LoadDatabase validates an already-decoded zone database object and builds
// the zone tree. It returns the root zone together with the load-wide pools,
// or the first validation error encountered anywhere in the tree. On error
// no partial tree is returned.
func LoadDatabase(raw any) (*Zone, *Pools, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: top-level value must be an object", ErrConfigFormat)
	}

	l := newLoader()
	root, err := l.loadZone(obj, nil)
	if err != nil {
		return nil, nil, err
	}
	return root, &l.pools, nil
}

// LoadFile reads and decodes a zone database file, then builds the tree.
func LoadFile(path string) (*Zone, *Pools, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConfigFormat, err)
	}
	return LoadDatabase(raw)
}

// loadZone validates one raw zone object and constructs its node, then
// recurses into its subzones in input order. Any failure aborts the load.
func (l *loader) loadZone(raw map[string]any, parent *Zone) (*Zone, error) {
	namespace := ""
	if v, ok := raw["namespace"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: namespace must be a string", ErrInvalidNamespace)
		}
		namespace = s
	}

	if parent == nil {
		if namespace != "" {
			return nil, fmt.Errorf("%w: %q", ErrRootNamespace, namespace)
		}
		if recs, err := listField(raw, "records"); err != nil {
			return nil, err
		} else if len(recs) > 0 {
			return nil, ErrRootRecords
		}
	} else {
		if namespace == "" {
			return nil, fmt.Errorf("%w: non-root zones require a namespace", ErrInvalidNamespace)
		}
		if namespace == "." {
			return nil, fmt.Errorf("%w: %q is reserved for the root", ErrInvalidNamespace, namespace)
		}
	}

	z := &Zone{Namespace: namespace, Parent: parent}
	host := z.Host()

	rawRecords, err := listField(raw, "records")
	if err != nil {
		return nil, err
	}
	z.Records, err = l.loadRecords(rawRecords, host)
	if err != nil {
		return nil, err
	}

	rawRecursion, err := listField(raw, "recursion")
	if err != nil {
		return nil, err
	}
	for _, v := range rawRecursion {
		addr, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: recursion entries must be strings", ErrConfigFormat)
		}
		src, err := l.recursionSource(addr)
		if err != nil {
			return nil, err
		}
		z.Recursion = append(z.Recursion, src)
	}

	rawAllow, err := listField(raw, "allow_sources")
	if err != nil {
		return nil, err
	}
	for _, v := range rawAllow {
		addr, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: allow_sources entries must be strings", ErrConfigFormat)
		}
		src, err := l.requestSource(addr)
		if err != nil {
			return nil, err
		}
		z.Allow = append(z.Allow, src)
	}

	rawSubzones, err := listField(raw, "subzones")
	if err != nil {
		return nil, err
	}
	for _, v := range rawSubzones {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: subzones entries must be objects", ErrConfigFormat)
		}
		child, err := l.loadZone(obj, z)
		if err != nil {
			return nil, err
		}
		z.Children = append(z.Children, child)
	}

	return z, nil
}

// loadRecords builds a zone's record list in input order, suppressing
// intra-zone duplicates and synthesizing reverse-pointer records into the
// load-wide PTR pool.
func (l *loader) loadRecords(rawRecords []any, host string) ([]record.Record, error) {
	var records []record.Record
	seen := make(map[string]bool)

	for _, v := range rawRecords {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: records entries must be objects", ErrConfigFormat)
		}

		rec, err := record.Parse(obj)
		if err != nil {
			return nil, err
		}

		if addr, wantPTR := reversePointerRequest(rec); wantPTR {
			ptr, err := record.NewPTR(host, addr)
			if err != nil {
				return nil, err
			}
			if !l.ptrSeen[ptr.Key()] {
				l.ptrSeen[ptr.Key()] = true
				l.pools.PTR = append(l.pools.PTR, ptr)
			}
		}

		if seen[rec.Key()] {
			continue
		}
		seen[rec.Key()] = true
		records = append(records, rec)
	}

	return records, nil
}

// reversePointerRequest reports whether rec asks for reverse-pointer
// synthesis, returning its address when it does.
func reversePointerRequest(rec record.Record) (string, bool) {
	switch r := rec.(type) {
	case *record.A:
		return r.Address, r.PtrRecord
	case *record.AAAA:
		return r.Address, r.PtrRecord
	}
	return "", false
}

// recursionSource returns the pooled recursion source for addr, constructing
// and pooling it on first sight of the underlying IP.
func (l *loader) recursionSource(addr string) (*source.RecursionSource, error) {
	src, err := source.NewRecursion(addr)
	if err != nil {
		return nil, err
	}
	if pooled, ok := l.recIndex[src.Key()]; ok {
		return pooled, nil
	}
	l.recIndex[src.Key()] = src
	l.pools.Recursion = append(l.pools.Recursion, src)
	return src, nil
}

// requestSource returns the pooled request source for addr, constructing and
// pooling it on first sight of the underlying IP.
func (l *loader) requestSource(addr string) (*source.RequestSource, error) {
	src, err := source.NewRequest(addr)
	if err != nil {
		return nil, err
	}
	if pooled, ok := l.reqIndex[src.Key()]; ok {
		return pooled, nil
	}
	l.reqIndex[src.Key()] = src
	l.pools.Allow = append(l.pools.Allow, src)
	return src, nil
}

// listField extracts an optional list-valued field.
func listField(raw map[string]any, name string) ([]any, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", ErrConfigFormat, name)
	}
	return list, nil
}
