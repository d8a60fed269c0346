// Package source implements the network source identifiers referenced by
// zone recursion and request-allow pools.
package source

import (
	"errors"
	"fmt"
	"net"
)

// ErrInvalidAddress is returned when a source address does not parse as an IP.
var ErrInvalidAddress = errors.New("invalid source address")

// RecursionSource permits recursive query forwarding for the zones that
// reference it.
type RecursionSource struct {
	Address string
	key     string
}

// RequestSource permits direct queries from the address it wraps.
type RequestSource struct {
	Address string
	key     string
}

// NewRecursion builds a recursion source from a textual IP address.
func NewRecursion(address string) (*RecursionSource, error) {
	key, err := ipKey(address)
	if err != nil {
		return nil, err
	}
	return &RecursionSource{Address: address, key: key}, nil
}

// NewRequest builds a request source from a textual IP address.
func NewRequest(address string) (*RequestSource, error) {
	key, err := ipKey(address)
	if err != nil {
		return nil, err
	}
	return &RequestSource{Address: address, key: key}, nil
}

// Key returns the canonical parsed-IP identity of the source. Two sources
// built from different spellings of the same address share a key.
func (s *RecursionSource) Key() string { return s.key }

// Key returns the canonical parsed-IP identity of the source.
func (s *RequestSource) Key() string { return s.key }

// ipKey canonicalizes a textual IP address for identity comparison.
// Both source kinds share it; identity is the parsed value, not the text.
func ipKey(address string) (string, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return ip.String(), nil
}
