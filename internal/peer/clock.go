package peer

import (
	"sync"
	"time"

	"github.com/vancomm/minesweeper-duo/internal/mines"
)

type clock struct {
	stop chan struct{}
	once sync.Once
}

func (c *clock) halt() {
	c.once.Do(func() { close(c.stop) })
}

// startClock must be called with mu held. It is a no-op unless the game is
// in progress and no clock is running yet.
func (p *Peer) startClock() {
	if p.clock != nil || p.game.Phase() != mines.InProgress {
		return
	}
	c := &clock{stop: make(chan struct{})}
	p.clock = c
	go p.tick(c)
}

// stopClock must be called with mu held.
func (p *Peer) stopClock() {
	if p.clock == nil {
		return
	}
	p.clock.halt()
	p.clock = nil
}

func (p *Peer) tick(c *clock) {
	ticker := time.NewTicker(p.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.clock != c {
				p.mu.Unlock()
				return
			}
			if !p.game.Tick() {
				p.stopClock()
			}
			p.mu.Unlock()
		}
	}
}
