package record

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"strings"
	"unicode/utf8"
)

// Parse builds a validated record from one raw record object, as decoded
// from a zone database file. Each kind consumes only the fields it declares;
// unrelated keys are ignored.
func Parse(raw map[string]any) (Record, error) {
	name, _ := raw["type"].(string)
	rtype, err := ParseType(name)
	if err != nil {
		return nil, err
	}
	if rtype == TypePTR {
		return nil, ErrDirectPTR
	}

	ttl, err := ttlField(raw)
	if err != nil {
		return nil, err
	}

	switch rtype {
	case TypeA:
		return parseA(raw, ttl)
	case TypeAAAA:
		return parseAAAA(raw, ttl)
	case TypeCNAME:
		return parseCNAME(raw, ttl)
	case TypeTXT:
		return parseTXT(raw, ttl)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func parseA(raw map[string]any, ttl *uint32) (*A, error) {
	addr, _ := raw["address"].(string)
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("%w: invalid IPv4 address %q", ErrInvalidAddress, addr)
	}
	flag, _ := raw["ptr_record"].(bool)
	return &A{Address: addr, PtrRecord: flag, TTL: ttl}, nil
}

func parseAAAA(raw map[string]any, ttl *uint32) (*AAAA, error) {
	addr, _ := raw["address"].(string)
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() != nil {
		return nil, fmt.Errorf("%w: invalid IPv6 address %q", ErrInvalidAddress, addr)
	}
	flag, _ := raw["ptr_record"].(bool)
	return &AAAA{Address: addr, PtrRecord: flag, TTL: ttl}, nil
}

func parseCNAME(raw map[string]any, ttl *uint32) (*CNAME, error) {
	target, _ := raw["target"].(string)
	if err := validateHostname(target); err != nil {
		return nil, err
	}
	return &CNAME{Target: target, TTL: ttl}, nil
}

func parseTXT(raw map[string]any, ttl *uint32) (*TXT, error) {
	text, _ := raw["text"].(string)
	if n := utf8.RuneCountInString(text); n > 255 {
		return nil, fmt.Errorf("%w: %d characters", ErrTextTooLong, n)
	}
	return &TXT{Text: text, TTL: ttl}, nil
}

func validateHostname(name string) error {
	if name == "" {
		return fmt.Errorf("%w: hostname cannot be empty", ErrInvalidHostname)
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidHostname, name)
	}
	return nil
}

// ttlField extracts the optional ttl field. A missing field means the
// record inherits the zone default.
func ttlField(raw map[string]any) (*uint32, error) {
	v, ok := raw["ttl"]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := intValue(v)
	if !ok || n < 0 || n > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTTL, v)
	}
	ttl := uint32(n)
	return &ttl, nil
}

// intValue coerces the numeric representations a decoded database value can
// take. JSON decoding yields float64; fractional values are not integers.
func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
