package record

import (
	"fmt"

	"github.com/miekg/dns"
)

// PTR maps an address back to a host name. PTR records are synthesized by
// the loader for A and AAAA records that request one; they are never
// declared in zone record lists.
type PTR struct {
	Host string
	// Address is the canonical reverse-lookup name for the source address:
	// in-addr.arpa for IPv4, ip6.arpa for IPv6.
	Address string
	TTL     *uint32
}

// NewPTR builds a reverse-pointer record for host from a textual IP address.
func NewPTR(host, address string) (*PTR, error) {
	arpa, err := dns.ReverseAddr(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return &PTR{Host: host, Address: arpa}, nil
}

func (r *PTR) Type() Type { return TypePTR }

// Key identifies a PTR by its (host, reverse name) pair.
func (r *PTR) Key() string {
	return fmt.Sprintf("PTR:%s:%s", r.Host, r.Address)
}
