package dns

import (
	"context"
	"errors"
	"net"
)

// Result[T] carries a resolved record set alongside whether the answer was
// DNSSEC-authenticated. Added here because the generic Result type the rest
// of this package's call sites assume was not present in the retrieved copy
// of this package; this restores the shape those call sites expect.
type Result[T any] struct {
	Records   []T
	Authentic bool
}

var (
	ErrDNSNotFound = errors.New("dns: record not found")
	ErrDNSTimeout  = errors.New("dns: query timed out")
	ErrDNSServFail = errors.New("dns: server failure")
	ErrDNSRefused  = errors.New("dns: query refused")
	ErrDNSBogus    = errors.New("dns: response failed DNSSEC validation")
)

// Resolver is the interface DNSResolver and MockResolver both satisfy.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) (Result[string], error)
	LookupIP(ctx context.Context, domain string) (Result[net.IP], error)
	LookupMX(ctx context.Context, name string) (Result[*net.MX], error)
	LookupAddr(ctx context.Context, ip net.IP) (Result[string], error)
}

var (
	_ Resolver = (*DNSResolver)(nil)
	_ Resolver = (*StdResolver)(nil)
)

// IsNotFound, IsTimeout, IsServFail, and IsTemporary classify a DNS lookup
// error, for callers (like mxdial.go) that need to distinguish NXDOMAIN
// from a retryable failure. Also absent from the retrieved copy of this
// package despite dns_test.go exercising them; added in the same shape.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDNSNotFound)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrDNSTimeout)
}

func IsServFail(err error) bool {
	return errors.Is(err, ErrDNSServFail)
}

func IsTemporary(err error) bool {
	return IsTimeout(err) || IsServFail(err)
}
