package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"venue/internal/protocol"
)

// Broadcaster pushes the full session snapshot to every connected
// viewer on a fixed period.
type Broadcaster struct {
	hub    *Hub
	period time.Duration
}

func NewBroadcaster(hub *Hub, period time.Duration) *Broadcaster {
	return &Broadcaster{hub: hub, period: period}
}

// Run drives the tick loop until ctx is canceled. The sweep runs on
// this goroutine, so ticks never overlap; when a sweep outlasts the
// period the ticker coalesces the missed ticks.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.period)
	defer ticker.Stop()
	log.Info().Str("module", "app.broadcaster").Dur("period", b.period).Msg("broadcast loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.broadcaster").Msg("broadcast loop stopped")
			return
		case <-ticker.C:
			b.Tick()
		}
	}
}

// Tick takes one snapshot and delivers it to every viewer it lists.
// Per-recipient failures are isolated; one dead channel never starves
// the rest of the sweep.
func (b *Broadcaster) Tick() {
	snap := b.hub.Session.Snapshot()
	for id := range snap.Viewers {
		resp := protocol.Response{
			Type:       protocol.TypeExpState,
			ExpState:   snap,
			Parameters: map[string]string{"playerId": id},
		}
		payload, err := resp.Encode()
		if err != nil {
			log.Error().Err(err).Str("module", "app.broadcaster").Msg("encode snapshot")
			return
		}
		if err := b.hub.Deliver(id, payload); err != nil {
			log.Debug().Err(err).Str("module", "app.broadcaster").Str("viewer", id).Msg("tick delivery skipped")
		}
	}
}
