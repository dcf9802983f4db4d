package dnsclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/dnsrecord"
	"github.com/rusub/rusub/internal/dnstestutil"
)

func TestQueryFull_CNAMEChain(t *testing.T) {
	handler := dnstestutil.StaticHandler(map[string]*dns.Msg{
		"alias.test A": dnstestutil.Answer(dnstestutil.CNAMERecord("alias.test", "beta.test")),
		"beta.test A":  dnstestutil.Answer(dnstestutil.CNAMERecord("beta.test", "gamma.test")),
		"gamma.test A": dnstestutil.Answer(dnstestutil.ARecord("gamma.test", "1.2.3.4")),
	})
	srv, err := dnstestutil.NewServer(handler)
	require.NoError(t, err)
	defer srv.Close()

	c := newTestClient(t, srv, 3, time.Second)
	records, err := c.QueryFull(context.Background(), "alias.test")
	require.NoError(t, err)

	addrs := dnsrecord.Addresses(records)
	assert.Equal(t, []string{"1.2.3.4"}, addrs)

	var cnames []string
	for _, r := range records {
		if r.Type == dnsrecord.TypeCNAME {
			cnames = append(cnames, r.Data)
		}
	}
	assert.ElementsMatch(t, []string{"beta.test", "gamma.test"}, cnames)
}

func TestQueryFull_FailsOnlyIfBothBranchesFail(t *testing.T) {
	handler := dnstestutil.StaticHandler(map[string]*dns.Msg{
		"dual.test A": dnstestutil.Answer(dnstestutil.ARecord("dual.test", "10.0.0.1")),
		// AAAA left unmapped -> NXDOMAIN, which is not an error for the branch.
	})
	srv, err := dnstestutil.NewServer(handler)
	require.NoError(t, err)
	defer srv.Close()

	c := newTestClient(t, srv, 3, time.Second)
	records, err := c.QueryFull(context.Background(), "dual.test")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, dnsrecord.Addresses(records))
}

func TestQueryFull_BothBranchesFail(t *testing.T) {
	srv, err := dnstestutil.NewServer(func(q dns.Question) *dns.Msg {
		return nil // drop everything -> timeout on both branches
	})
	require.NoError(t, err)
	defer srv.Close()

	c := newTestClient(t, srv, 1, 100*time.Millisecond)
	_, err = c.QueryFull(context.Background(), "unreachable.test")
	require.Error(t, err)
}
