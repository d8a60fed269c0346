package store

import (
	"fmt"
	"time"

	"github.com/scott/zonedb/record"
)

// ZoneEntry is the stored form of one zone node. Tree structure is kept as
// host references; records live in their own bucket keyed by zone host.
type ZoneEntry struct {
	Host       string    `json:"host"`
	Namespace  string    `json:"namespace,omitempty"`
	Parent     string    `json:"parent,omitempty"`
	Children   []string  `json:"children,omitempty"`
	Recursion  []string  `json:"recursion,omitempty"`
	Allow      []string  `json:"allow_sources,omitempty"`
	NumRecords int       `json:"num_records"`
	SavedAt    time.Time `json:"saved_at"`
}

// RecordEntry is the stored form of one record, flattened across kinds.
// Only the fields the record's kind declares are populated.
type RecordEntry struct {
	Type      string  `json:"type"`
	TTL       *uint32 `json:"ttl,omitempty"`
	Address   string  `json:"address,omitempty"`
	PtrRecord bool    `json:"ptr_record,omitempty"`
	Target    string  `json:"target,omitempty"`
	Text      string  `json:"text,omitempty"`
	Host      string  `json:"host,omitempty"`
}

// SourceEntry is the stored form of one pooled source identifier.
type SourceEntry struct {
	Kind    string `json:"kind"` // "recursion" or "request"
	Address string `json:"address"`
	Key     string `json:"key"`
}

// Source kinds
const (
	SourceKindRecursion = "recursion"
	SourceKindRequest   = "request"
)

// newRecordEntry flattens a record variant into its stored form.
func newRecordEntry(rec record.Record) (RecordEntry, error) {
	switch r := rec.(type) {
	case *record.A:
		return RecordEntry{Type: string(record.TypeA), TTL: r.TTL, Address: r.Address, PtrRecord: r.PtrRecord}, nil
	case *record.AAAA:
		return RecordEntry{Type: string(record.TypeAAAA), TTL: r.TTL, Address: r.Address, PtrRecord: r.PtrRecord}, nil
	case *record.CNAME:
		return RecordEntry{Type: string(record.TypeCNAME), TTL: r.TTL, Target: r.Target}, nil
	case *record.TXT:
		return RecordEntry{Type: string(record.TypeTXT), TTL: r.TTL, Text: r.Text}, nil
	case *record.PTR:
		return RecordEntry{Type: string(record.TypePTR), TTL: r.TTL, Host: r.Host, Address: r.Address}, nil
	}
	return RecordEntry{}, fmt.Errorf("unsupported record type %s", rec.Type())
}
