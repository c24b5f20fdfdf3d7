package playback

import (
	"context"
	"time"

	"livephoto-audio/application/observe"
	"livephoto-audio/domain/playback"
)

// poller samples the position of a playing resource. It never touches the
// controller lock, so the controller may stop and join it while holding it.
type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startPoller(h playback.Handle, interval time.Duration, duration float64, hub *observe.Hub[playback.Progress]) *poller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hub.Publish(playback.Progress{
					Position: playback.Clamp(h.Position(), duration),
					Duration: duration,
				})
			}
		}
	}()

	return p
}

// stop cancels the poller and waits for it to exit
func (p *poller) stop() {
	p.cancel()
	<-p.done
}
