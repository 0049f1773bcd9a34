package smtpsubmit

import (
	"context"
	"fmt"
	"net"
	"sort"

	"golang.org/x/sync/errgroup"

	smtpdns "github.com/relaykit/smtpsubmit/dns"
)

// MXResolver is the subset of dns.Resolver DialMX needs.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) (smtpdns.Result[*net.MX], error)
}

// DialMX resolves domain's MX records (adapted from the teacher's
// dns.DNSResolver.LookupMX) and races Connect against every candidate host
// concurrently, returning the Client for whichever connects first. This is
// a convenience layered on top of Connect, not a replacement for it.
func DialMX(ctx context.Context, cfg ClientConfig, transport Transport, resolver MXResolver, domain string, port int) (*Client, error) {
	res, err := resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("smtpsubmit: resolving MX for %s: %w", domain, err)
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("smtpsubmit: no MX records for %s", domain)
	}

	hosts := append([]*net.MX(nil), res.Records...)
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Pref < hosts[j].Pref })

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		client *Client
		host   string
	}
	results := make(chan result, len(hosts))

	g, gctx := errgroup.WithContext(raceCtx)
	for _, mx := range hosts {
		host := mx.Host
		g.Go(func() error {
			c := NewClient(cfg)
			c.Configure(transport)
			ok, err := c.Connect(host, port).Wait(gctx)
			if err != nil || !ok {
				return nil // not an errgroup-cancelling error: just this candidate failing
			}
			select {
			case results <- result{client: c, host: host}:
			case <-gctx.Done():
				c.Disconnect()
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() { g.Wait(); close(done) }()

	select {
	case r := <-results:
		cancel()
		<-done
		return r.client, nil
	case <-done:
		return nil, fmt.Errorf("smtpsubmit: could not connect to any MX host for %s", domain)
	}
}
