package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"resume-screener/internal/app"
)

// SessionReaper periodically destroys screening sessions that outlived the
// retention window. The actual teardown goes through the screen service,
// which re-checks each session under the owner's lock, so the sweep cannot
// race an in-flight screen call.
type SessionReaper struct {
	service  *app.ScreenService
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSessionReaper(service *app.ScreenService, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionReaper{
		service:  service,
		interval: interval,
	}
}

func (r *SessionReaper) Start(ctx context.Context) {
	if r.cancel != nil {
		return
	}

	reaperCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-reaperCtx.Done():
				return
			case <-ticker.C:
				reaped, err := r.service.ReapExpired(reaperCtx, time.Now())
				if err != nil {
					log.Printf("session sweep failed: %v", err)
					continue
				}
				if reaped > 0 {
					log.Printf("session sweep removed %d expired session(s)", reaped)
				}
			}
		}
	}()
}

func (r *SessionReaper) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
