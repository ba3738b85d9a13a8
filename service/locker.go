package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmdatafocus/commerce_backend/models"
)

// Locker serializes work on a key. The returned func releases it.
// config.RedisLocker implements it across instances.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// KeyedMutex is the single-process Locker.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: map[string]*keyedEntry{}}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				m.release(key, e)
			})
		}, nil
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) release(key string, e *keyedEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

func cartLockKey(tenantID int, owner models.CartOwner) string {
	if owner.UserId != nil {
		return fmt.Sprintf("cart:%d:user:%d", tenantID, *owner.UserId)
	}
	return fmt.Sprintf("cart:%d:session:%s", tenantID, owner.SessionId)
}
