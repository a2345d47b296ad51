package ftp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/puddle/v2"
)

// errNoSession is returned when no session becomes free within the acquire timeout.
var errNoSession = errors.New("ftp: no session available")

// sessionPool bounds concurrent sessions and recycles their buffers.
type sessionPool struct {
	pool           *puddle.Pool[*session]
	acquireTimeout time.Duration
}

func newSessionPool(maxSessions int32, maxLine int, acquireTimeout time.Duration) (*sessionPool, error) {
	p := &sessionPool{acquireTimeout: acquireTimeout}

	pool, err := puddle.NewPool(&puddle.Config[*session]{
		Constructor: func(context.Context) (*session, error) {
			return newSession(maxLine), nil
		},
		Destructor: func(s *session) {
			s.reset()
		},
		MaxSize: maxSessions,
	})
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return p, nil
}

// acquire waits up to the acquire timeout for a free session.
// The caller must Release the resource after resetting the session.
func (p *sessionPool) acquire(ctx context.Context) (*puddle.Resource[*session], error) {
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	res, err := p.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errNoSession
		}
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	return res, nil
}

// stat returns the active and allocated session counts.
func (p *sessionPool) stat() (active, total int32) {
	s := p.pool.Stat()
	return s.AcquiredResources(), s.TotalResources()
}

// close waits for every acquired session to be released.
func (p *sessionPool) close() {
	p.pool.Close()
}
