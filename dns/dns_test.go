package dns

import (
	"context"
	"net"
	"testing"
)

func TestErrorClassifiers(t *testing.T) {
	if !IsNotFound(ErrDNSNotFound) {
		t.Error("expected ErrDNSNotFound to classify as not-found")
	}
	if !IsTimeout(ErrDNSTimeout) || !IsTemporary(ErrDNSTimeout) {
		t.Error("expected ErrDNSTimeout to classify as timeout and temporary")
	}
	if !IsServFail(ErrDNSServFail) || !IsTemporary(ErrDNSServFail) {
		t.Error("expected ErrDNSServFail to classify as servfail and temporary")
	}
	if IsNotFound(nil) || IsTimeout(nil) || IsServFail(nil) || IsTemporary(nil) {
		t.Error("expected a nil error to classify as none of the above")
	}
}

func TestNewResolverAppliesDefaults(t *testing.T) {
	r := NewResolver(ResolverConfig{Nameservers: []string{"192.0.2.1:53"}})
	if r.config.Timeout == 0 {
		t.Error("expected a default timeout")
	}
	if r.config.Retries == 0 {
		t.Error("expected a default retry count")
	}
}

// mxLookupResolver is the exact subset DialMX depends on (see
// MXResolver in mxdial.go); MockResolver satisfying it here is what makes
// DialMX testable without a real network.
type mxLookupResolver interface {
	LookupMX(ctx context.Context, name string) (Result[*net.MX], error)
}

func TestMockResolverSatisfiesMXLookup(t *testing.T) {
	var _ mxLookupResolver = MockResolver{}

	mr := MockResolver{
		MX: map[string][]*net.MX{
			"example.com.": {{Host: "mx1.example.com.", Pref: 10}},
		},
	}

	res, err := mr.LookupMX(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Host != "mx1.example.com." {
		t.Fatalf("got %+v", res.Records)
	}
}

func TestMockResolverMXNotFound(t *testing.T) {
	mr := MockResolver{}
	_, err := mr.LookupMX(context.Background(), "nobody.example.com")
	if !IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestMockResolverMXServFail(t *testing.T) {
	mr := MockResolver{Fail: []string{"mx example.com."}}
	_, err := mr.LookupMX(context.Background(), "example.com")
	if !IsServFail(err) {
		t.Fatalf("expected a servfail error, got %v", err)
	}
}

func TestMockResolverIPAndTXT(t *testing.T) {
	mr := MockResolver{
		A:   map[string][]string{"example.com.": {"192.0.2.1"}},
		TXT: map[string][]string{"example.com.": {"v=spf1 -all"}},
	}

	ipRes, err := mr.LookupIP(context.Background(), "example.com")
	if err != nil || len(ipRes.Records) != 1 {
		t.Fatalf("LookupIP: got %+v, err %v", ipRes, err)
	}

	txtRes, err := mr.LookupTXT(context.Background(), "example.com")
	if err != nil || len(txtRes.Records) != 1 {
		t.Fatalf("LookupTXT: got %+v, err %v", txtRes, err)
	}
}
