package tone

import (
	"chat-sim/contract"
	"context"
	"log/slog"
	"sync"
	"time"
)

const playTimeout = 2 * time.Second

// Player plays the cue in the background. Failures are logged and never
// reach the caller.
type Player struct {
	log     *slog.Logger
	device  contract.AudioDevice
	samples []float64
	wg      sync.WaitGroup
}

func NewPlayer(log *slog.Logger, device contract.AudioDevice) *Player {
	return &Player{log: log, device: device, samples: Samples()}
}

func (p *Player) PlayNotification() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := p.device.Play(ctx, p.samples, SampleRate); err != nil {
			p.log.Warn("Notification tone failed", "error", err)
		}
	}()
}

// Wait blocks until every pending playback has returned.
func (p *Player) Wait() {
	p.wg.Wait()
}
