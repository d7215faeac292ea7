package nudge

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler drives the engine: a fixed-interval ticker for cycles and a
// worker draining the event queue. Both stop cleanly on Stop.
type Scheduler struct {
	engine   *Engine
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	return &Scheduler{engine: engine, interval: interval}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.runTicker(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.engine.runEventWorker(ctx)
	}()
	log.Printf("[NudgeCron] Scheduled every %s", s.interval)
}

func (s *Scheduler) runTicker(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := s.engine.RunCycle(ctx)
			log.Printf("[NudgeCron] Tick: %d processed, %d errors", result.Processed, len(result.Errors))
		}
	}
}

// Stop cancels the ticker and event worker and waits for them to exit.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}
