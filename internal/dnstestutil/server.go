// Package dnstestutil provides an in-process fake DNS-over-UDP resolver for
// exercising internal/dnsclient, internal/wildcard and internal/scanner
// without touching the network beyond loopback. It plays the role the
// teacher's testutil.MockResolver plays for HTTP-based services, adapted to
// a wire-protocol client that cannot be satisfied by a Go interface mock
// alone.
package dnstestutil

import (
	"net"
	"strings"
	"sync"

	"github.com/miekg/dns"
)

// Handler answers one question. Returning nil drops the query silently,
// simulating a resolver that never responds (used for timeout/retry tests).
type Handler func(q dns.Question) *dns.Msg

// Server is a loopback UDP server that answers queries via a Handler.
type Server struct {
	conn *net.UDPConn
	wg   sync.WaitGroup

	mu      sync.Mutex
	handler Handler
}

// NewServer starts a Server on a random loopback port with the given
// initial handler. Call Close when done.
func NewServer(handler Handler) (*Server, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		return nil, err
	}
	s := &Server{conn: conn, handler: handler}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// Addr returns the "ip:port" this server listens on.
func (s *Server) Addr() string {
	return s.conn.LocalAddr().String()
}

// SetHandler swaps the active handler, letting a test change behavior
// mid-run (e.g. simulate a resolver flipping from answering to dropping).
func (s *Server) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Close stops the server and releases its socket.
func (s *Server) Close() error {
	err := s.conn.Close()
	s.wg.Wait()
	return err
}

func (s *Server) serve() {
	defer s.wg.Done()
	buf := make([]byte, 4096)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return // socket closed
		}
		req := new(dns.Msg)
		if err := req.Unpack(buf[:n]); err != nil {
			continue
		}
		if len(req.Question) != 1 {
			continue
		}

		s.mu.Lock()
		h := s.handler
		s.mu.Unlock()
		resp := h(req.Question[0])
		if resp == nil {
			continue // simulate a dropped packet
		}
		resp.Id = req.Id
		resp.Question = req.Question
		resp.Response = true

		packed, err := resp.Pack()
		if err != nil {
			continue
		}
		_, _ = s.conn.WriteToUDP(packed, addr)
	}
}

// NXDOMAIN builds a terminal not-found response.
func NXDOMAIN() *dns.Msg {
	m := new(dns.Msg)
	m.Rcode = dns.RcodeNameError
	return m
}

// Answer builds a success response carrying rrs as the answer section.
func Answer(rrs ...dns.RR) *dns.Msg {
	m := new(dns.Msg)
	m.Rcode = dns.RcodeSuccess
	m.Answer = rrs
	return m
}

// ARecord builds an A RR owned by name.
func ARecord(name, ip string) dns.RR {
	return &dns.A{
		Hdr: dns.RR_Header{Name: dns.Fqdn(name), Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
		A:   net.ParseIP(ip),
	}
}

// AAAARecord builds an AAAA RR owned by name.
func AAAARecord(name, ip string) dns.RR {
	return &dns.AAAA{
		Hdr:  dns.RR_Header{Name: dns.Fqdn(name), Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 60},
		AAAA: net.ParseIP(ip),
	}
}

// CNAMERecord builds a CNAME RR owned by name, pointing at target.
func CNAMERecord(name, target string) dns.RR {
	return &dns.CNAME{
		Hdr:    dns.RR_Header{Name: dns.Fqdn(name), Rrtype: dns.TypeCNAME, Class: dns.ClassINET, Ttl: 60},
		Target: dns.Fqdn(target),
	}
}

// StaticHandler maps "name type" (e.g. "api.example.test A") to a canned
// response, and answers NXDOMAIN for anything not in the map.
func StaticHandler(byNameType map[string]*dns.Msg) Handler {
	return func(q dns.Question) *dns.Msg {
		key := strings.ToLower(strings.TrimSuffix(q.Name, ".")) + " " + dns.TypeToString[q.Qtype]
		if resp, ok := byNameType[key]; ok {
			return resp
		}
		return NXDOMAIN()
	}
}
