package ftp

import (
	"net"
	"sync"

	"github.com/sony/gobreaker/v2"
	"github.com/zeebo/xxh3"
)

const peerShards = 16

// peerRegistry maps peer hosts to their breakers.
// Hosts are spread over shards by hash so accepts from unrelated peers do
// not contend on one lock.
type peerRegistry struct {
	shards     [peerShards]peerShard
	newBreaker func(host string) *peerBreaker
}

type peerShard struct {
	mu       sync.Mutex
	breakers map[string]*peerBreaker
}

func newPeerRegistry(newBreaker func(host string) *peerBreaker) *peerRegistry {
	r := &peerRegistry{newBreaker: newBreaker}
	for i := range r.shards {
		r.shards[i].breakers = make(map[string]*peerBreaker)
	}
	return r
}

func (r *peerRegistry) shard(host string) *peerShard {
	return &r.shards[xxh3.HashString(host)%peerShards]
}

// breaker returns the breaker of host, creating it on first use.
func (r *peerRegistry) breaker(host string) *peerBreaker {
	s := r.shard(host)
	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.breakers[host]
	if !ok {
		cb = r.newBreaker(host)
		s.breakers[host] = cb
	}
	return cb
}

// prune forgets hosts whose breaker is closed with no pending failures and
// no session running. It returns the number of hosts removed.
func (r *peerRegistry) prune() int {
	removed := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		for host, cb := range s.breakers {
			if idle(cb) {
				delete(s.breakers, host)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// idle reports whether cb holds nothing worth keeping. A session still
// running under cb must report its outcome to this breaker, not to a new one.
func idle(cb *peerBreaker) bool {
	counts := cb.Counts()
	inFlight := counts.Requests - counts.TotalSuccesses - counts.TotalFailures
	return cb.State() == gobreaker.StateClosed && counts.ConsecutiveFailures == 0 && inFlight == 0
}

func (r *peerRegistry) len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		n += len(s.breakers)
		s.mu.Unlock()
	}
	return n
}

// peerHost returns the host part of a remote address, the breaker key.
func peerHost(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
