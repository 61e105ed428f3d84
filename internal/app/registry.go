package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrDuplicateID      = errors.New("id already registered")
	ErrUnknownRecipient = errors.New("unknown recipient")
	ErrChannelClosed    = errors.New("channel closed")
)

// Conn is a viewer's live outbound channel. TrySend must not block;
// it fails when the peer is gone or its buffer is exhausted.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(payload []byte) error
	Close()
}

// Registry maps viewer ids to their outbound channels. It holds
// non-owning associations only; viewer state lives in core.Session.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

func (r *Registry) Register(id string, c Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		return fmt.Errorf("register %s: %w", id, ErrDuplicateID)
	}
	r.conns[id] = c
	log.Info().Str("module", "app.registry").Str("viewer", id).Msg("channel registered")
	return nil
}

// Unregister removes the association and returns the channel so the
// caller can close it. Absent ids are a no-op.
func (r *Registry) Unregister(id string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
		log.Info().Str("module", "app.registry").Str("viewer", id).Msg("channel unregistered")
	}
	return c, ok
}

// Send pushes a payload to one viewer's channel. A failed write maps to
// ErrChannelClosed; the caller decides on cleanup, never this layer.
func (r *Registry) Send(id string, payload []byte) error {
	r.mu.RLock()
	c, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("send to %s: %w", id, ErrUnknownRecipient)
	}
	if err := c.TrySend(payload); err != nil {
		return fmt.Errorf("send to %s: %v: %w", id, err, ErrChannelClosed)
	}
	return nil
}

// Len reports the number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
