package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/scott/zonedb/record"
	"github.com/scott/zonedb/zone"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func testTree(t *testing.T) (*zone.Zone, *zone.Pools) {
	t.Helper()

	raw := map[string]any{
		"subzones": []any{
			map[string]any{
				"namespace": "example.com.",
				"records": []any{
					map[string]any{"type": "A", "address": "93.184.216.34", "ptr_record": true, "ttl": float64(300)},
					map[string]any{"type": "TXT", "text": "v=spf1 ~all"},
					map[string]any{"type": "CNAME", "target": "www.example.com."},
				},
				"recursion":     []any{"127.0.0.1"},
				"allow_sources": []any{"10.0.0.1", "10.0.0.2"},
			},
			map[string]any{"namespace": "other.org."},
		},
	}
	root, pools, err := zone.LoadDatabase(raw)
	if err != nil {
		t.Fatalf("Failed to load test tree: %v", err)
	}
	return root, pools
}

func TestSaveSnapshot_RoundTrip(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	entry, err := s.GetZone("example.com..")
	if err != nil {
		t.Fatalf("GetZone() error = %v", err)
	}
	if entry.Namespace != "example.com." {
		t.Errorf("Namespace = %q", entry.Namespace)
	}
	if entry.Parent != "." {
		t.Errorf("Parent = %q, want .", entry.Parent)
	}
	if entry.NumRecords != 3 {
		t.Errorf("NumRecords = %d, want 3", entry.NumRecords)
	}
	if len(entry.Recursion) != 1 || entry.Recursion[0] != "127.0.0.1" {
		t.Errorf("Recursion = %v", entry.Recursion)
	}
	if len(entry.Allow) != 2 {
		t.Errorf("Allow = %v, want 2 entries", entry.Allow)
	}

	rootEntry, err := s.GetZone(".")
	if err != nil {
		t.Fatalf("GetZone(root) error = %v", err)
	}
	if len(rootEntry.Children) != 2 {
		t.Errorf("root Children = %v, want 2 entries", rootEntry.Children)
	}
}

func TestListZones(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	zones, err := s.ListZones()
	if err != nil {
		t.Fatalf("ListZones() error = %v", err)
	}
	if len(zones) != 3 {
		t.Fatalf("ListZones() returned %d zones, want 3", len(zones))
	}
	hosts := map[string]bool{}
	for _, z := range zones {
		hosts[z.Host] = true
	}
	for _, want := range []string{".", "example.com..", "other.org.."} {
		if !hosts[want] {
			t.Errorf("ListZones() missing host %q", want)
		}
	}
}

func TestZoneRecords_Order(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	records, err := s.ZoneRecords("example.com..")
	if err != nil {
		t.Fatalf("ZoneRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ZoneRecords() returned %d records, want 3", len(records))
	}

	// Stored order matches declaration order.
	want := []string{string(record.TypeA), string(record.TypeTXT), string(record.TypeCNAME)}
	for i, rec := range records {
		if rec.Type != want[i] {
			t.Errorf("record %d Type = %s, want %s", i, rec.Type, want[i])
		}
	}
	if records[0].Address != "93.184.216.34" || !records[0].PtrRecord {
		t.Errorf("A record not preserved: %+v", records[0])
	}
	if records[0].TTL == nil || *records[0].TTL != 300 {
		t.Errorf("A record TTL = %v, want 300", records[0].TTL)
	}
}

func TestZoneRecords_EmptyZone(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	records, err := s.ZoneRecords("other.org..")
	if err != nil {
		t.Fatalf("ZoneRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ZoneRecords() returned %d records, want 0", len(records))
	}
}

func TestPTRRecords(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	ptrs, err := s.PTRRecords()
	if err != nil {
		t.Fatalf("PTRRecords() error = %v", err)
	}
	if len(ptrs) != 1 {
		t.Fatalf("PTRRecords() returned %d records, want 1", len(ptrs))
	}
	if ptrs[0].Address != "34.216.184.93.in-addr.arpa." {
		t.Errorf("PTR Address = %q", ptrs[0].Address)
	}
	if ptrs[0].Host != "example.com.." {
		t.Errorf("PTR Host = %q", ptrs[0].Host)
	}
}

func TestSources(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	sources, err := s.Sources()
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("Sources() returned %d entries, want 3", len(sources))
	}
	kinds := map[string]int{}
	for _, src := range sources {
		kinds[src.Kind]++
	}
	if kinds[SourceKindRecursion] != 1 {
		t.Errorf("recursion sources = %d, want 1", kinds[SourceKindRecursion])
	}
	if kinds[SourceKindRequest] != 2 {
		t.Errorf("request sources = %d, want 2", kinds[SourceKindRequest])
	}
}

func TestGetZone_NotFound(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	_, err := s.GetZone("missing.example.")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetZone() error = %v, want ErrNotFound", err)
	}
}

func TestSaveSnapshot_Replaces(t *testing.T) {
	s := testStore(t)
	root, pools := testTree(t)

	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	smaller, smallerPools, err := zone.LoadDatabase(map[string]any{
		"subzones": []any{map[string]any{"namespace": "solo.net."}},
	})
	if err != nil {
		t.Fatalf("Failed to load replacement tree: %v", err)
	}
	if err := s.SaveSnapshot(smaller, smallerPools); err != nil {
		t.Fatalf("SaveSnapshot(replacement) error = %v", err)
	}

	zones, err := s.ListZones()
	if err != nil {
		t.Fatalf("ListZones() error = %v", err)
	}
	if len(zones) != 2 {
		t.Errorf("ListZones() returned %d zones after replace, want 2", len(zones))
	}
	if _, err := s.GetZone("example.com.."); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale zone still present after replace: error = %v", err)
	}
	if ptrs, _ := s.PTRRecords(); len(ptrs) != 0 {
		t.Errorf("stale PTR pool after replace: %d entries", len(ptrs))
	}
}

func TestSaveSnapshot_DuplicateHost(t *testing.T) {
	s := testStore(t)

	// Sibling zones with one namespace load fine but share a host, which
	// the snapshot key scheme cannot represent without mixing their records.
	raw := map[string]any{
		"subzones": []any{
			map[string]any{
				"namespace": "example.com.",
				"records": []any{
					map[string]any{"type": "TXT", "text": "one"},
					map[string]any{"type": "TXT", "text": "two"},
					map[string]any{"type": "TXT", "text": "three"},
				},
			},
			map[string]any{
				"namespace": "example.com.",
				"records": []any{
					map[string]any{"type": "TXT", "text": "solo"},
				},
			},
		},
	}
	root, pools, err := zone.LoadDatabase(raw)
	if err != nil {
		t.Fatalf("Failed to load test tree: %v", err)
	}

	if err := s.SaveSnapshot(root, pools); err == nil {
		t.Fatal("SaveSnapshot() accepted sibling zones sharing a host")
	}

	// The rejected write rolls back whole; nothing is stored.
	zones, err := s.ListZones()
	if err != nil {
		t.Fatalf("ListZones() error = %v", err)
	}
	if len(zones) != 0 {
		t.Errorf("ListZones() returned %d zones after failed snapshot, want 0", len(zones))
	}
	records, err := s.ZoneRecords("example.com..")
	if err != nil {
		t.Fatalf("ZoneRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ZoneRecords() returned %d records after failed snapshot, want 0", len(records))
	}
}

func TestSaveSnapshot_NilRoot(t *testing.T) {
	s := testStore(t)
	if err := s.SaveSnapshot(nil, &zone.Pools{}); err == nil {
		t.Error("SaveSnapshot(nil) did not fail")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	root, pools := testTree(t)
	if err := s.SaveSnapshot(root, pools); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s2, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s2.Close()

	entry, err := s2.GetZone("example.com..")
	if err != nil {
		t.Fatalf("GetZone() after reopen error = %v", err)
	}
	if entry.NumRecords != 3 {
		t.Errorf("NumRecords = %d, want 3", entry.NumRecords)
	}
}
