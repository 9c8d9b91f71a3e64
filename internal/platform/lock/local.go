package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process Locker. Leases past their ttl can be taken over so
// a leaked release never wedges a key forever.
type Local struct {
	mu     sync.Mutex
	leases map[string]*lease
	now    func() time.Time
}

type lease struct {
	expires time.Time
}

func NewLocal() *Local {
	return &Local{leases: make(map[string]*lease), now: time.Now}
}

func (l *Local) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.leases[key]; ok && (cur.expires.IsZero() || now.Before(cur.expires)) {
		return nil, held(key)
	}
	ls := &lease{}
	if ttl > 0 {
		ls.expires = now.Add(ttl)
	}
	l.leases[key] = ls

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			if l.leases[key] == ls {
				delete(l.leases, key)
			}
			l.mu.Unlock()
		})
	}, nil
}
