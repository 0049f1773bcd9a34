package smtpsubmit

import (
	"context"
	"net"
	"testing"

	smtpdns "github.com/relaykit/smtpsubmit/dns"
)

// mxFakeTransport connects successfully only for hosts in ok, so tests can
// steer DialMX's race toward a particular MX candidate.
type mxFakeTransport struct {
	ok map[string]bool
}

func (t *mxFakeTransport) Connect(ctx context.Context, host string, port int) (NetworkConnection, error) {
	if !t.ok[host] {
		return nil, ErrConnectionClosed
	}
	return &fakeConnection{boundIP: net.ParseIP("127.0.0.1")}, nil
}

func TestDialMXPrefersReachableHost(t *testing.T) {
	resolver := &smtpdns.MockResolver{
		MX: map[string][]*net.MX{
			"example.com.": {
				{Host: "mx1.example.com.", Pref: 10},
				{Host: "mx2.example.com.", Pref: 20},
			},
		},
	}
	transport := &mxFakeTransport{ok: map[string]bool{"mx2.example.com.": true}}

	c, err := DialMX(context.Background(), DefaultClientConfig(), transport, resolver, "example.com", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected a connected client")
	}
}

func TestDialMXNoRecords(t *testing.T) {
	resolver := &smtpdns.MockResolver{}
	transport := &mxFakeTransport{ok: map[string]bool{}}

	_, err := DialMX(context.Background(), DefaultClientConfig(), transport, resolver, "nobody.example.com", 25)
	if err == nil {
		t.Fatal("expected an error when no MX records exist")
	}
}

func TestDialMXAllHostsUnreachable(t *testing.T) {
	resolver := &smtpdns.MockResolver{
		MX: map[string][]*net.MX{
			"example.com.": {{Host: "mx1.example.com.", Pref: 10}},
		},
	}
	transport := &mxFakeTransport{ok: map[string]bool{}}

	_, err := DialMX(context.Background(), DefaultClientConfig(), transport, resolver, "example.com", 25)
	if err == nil {
		t.Fatal("expected an error when every MX host refuses the connection")
	}
}
