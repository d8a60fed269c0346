// Package record implements the typed resource records of a zone database.
package record

import (
	"fmt"
	"strconv"
)

// Type identifies a supported resource record kind.
type Type string

const (
	TypeA     Type = "A"
	TypeAAAA  Type = "AAAA"
	TypeCNAME Type = "CNAME"
	TypeTXT   Type = "TXT"
	TypePTR   Type = "PTR"
)

// registry is the closed set of record kinds known to the loader.
var registry = map[string]Type{
	"A":     TypeA,
	"AAAA":  TypeAAAA,
	"CNAME": TypeCNAME,
	"TXT":   TypeTXT,
	"PTR":   TypePTR,
}

// ParseType resolves a type identifier against the registry.
func ParseType(s string) (Type, error) {
	if t, ok := registry[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Record is one validated entry in a zone's record set.
type Record interface {
	// Type returns the record's kind tag.
	Type() Type
	// Key returns a string identity covering every declared field,
	// including the TTL. Records with equal keys are duplicates.
	Key() string
}

// A maps a hostname to an IPv4 address.
type A struct {
	Address   string
	PtrRecord bool
	TTL       *uint32
}

func (r *A) Type() Type { return TypeA }

func (r *A) Key() string {
	return fmt.Sprintf("A:%s:%t:%s", r.Address, r.PtrRecord, ttlKey(r.TTL))
}

// AAAA maps a hostname to an IPv6 address.
type AAAA struct {
	Address   string
	PtrRecord bool
	TTL       *uint32
}

func (r *AAAA) Type() Type { return TypeAAAA }

func (r *AAAA) Key() string {
	return fmt.Sprintf("AAAA:%s:%t:%s", r.Address, r.PtrRecord, ttlKey(r.TTL))
}

// CNAME aliases a hostname to another hostname.
type CNAME struct {
	Target string
	TTL    *uint32
}

func (r *CNAME) Type() Type { return TypeCNAME }

func (r *CNAME) Key() string {
	return fmt.Sprintf("CNAME:%s:%s", r.Target, ttlKey(r.TTL))
}

// TXT holds free text of at most 255 characters.
type TXT struct {
	Text string
	TTL  *uint32
}

func (r *TXT) Type() Type { return TypeTXT }

func (r *TXT) Key() string {
	return fmt.Sprintf("TXT:%s:%s", r.Text, ttlKey(r.TTL))
}

// ttlKey renders an optional TTL for record identity keys.
// Absent and zero are distinct values.
func ttlKey(ttl *uint32) string {
	if ttl == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*ttl), 10)
}
