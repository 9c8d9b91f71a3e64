package lock

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
)

const OpAcquire = "lock.acquire"

// Locker hands out exclusive, non-blocking leases on a key. Acquire returns
// a Conflict fault when the key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// CertificationKey is the lease key guarding one certification's issuance.
func CertificationKey(id string) string {
	return "certification:" + strings.TrimSpace(id)
}

func held(key string) error {
	return faults.Conflict(OpAcquire, "%s is already being processed", key)
}
