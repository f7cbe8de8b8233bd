// Package lock provides keyed critical sections used to serialize
// reservation admission per offer.
package lock

import (
	"context"
	"fmt"

	"github.com/im7mortal/kmutex"
)

// Locker acquires an exclusive section for key. Work inside the section must
// use the returned context: it is cancelled before the lock can lapse. The
// returned release func must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (context.Context, func(), error)
}

// OfferKey is the lock key shared by everything that must not interleave
// with admission on one offer.
func OfferKey(offerID int64) string {
	return fmt.Sprintf("offer:%d", offerID)
}

// Local serializes callers within one process. It never lapses, so the
// section context is the caller's.
type Local struct {
	km *kmutex.Kmutex
}

func NewLocal() *Local {
	return &Local{km: kmutex.New()}
}

func (l *Local) Acquire(ctx context.Context, key string) (context.Context, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	l.km.Lock(key)
	return ctx, func() { l.km.Unlock(key) }, nil
}
