package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultCheckInterval = 15 * time.Minute

type ChallengeSweeper interface {
	ExpireChallenges(ctx context.Context, now time.Time) (int, error)
}

// DailySweep settles expired challenges once per local day, at or after the
// configured hour. It also sweeps at startup so a missed day is caught up.
type DailySweep struct {
	sweeper       ChallengeSweeper
	location      *time.Location
	hour          int
	checkInterval time.Duration
	now           func() time.Time
	logger        *zap.Logger

	mu          sync.Mutex
	lastSweptOn string
}

func NewDailySweep(sweeper ChallengeSweeper, location *time.Location, hour int, logger *zap.Logger) *DailySweep {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailySweep{
		sweeper:       sweeper,
		location:      location,
		hour:          hour,
		checkInterval: defaultCheckInterval,
		now:           time.Now,
		logger:        logger.Named("sweep"),
	}
}

// Run blocks until ctx is cancelled.
func (sweep *DailySweep) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweep.checkInterval)
	defer ticker.Stop()

	sweep.runAtStartup(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sweep.tick(ctx)
		}
	}
}

func (sweep *DailySweep) runAtStartup(ctx context.Context) {
	now := sweep.now().In(sweep.location)
	sweep.run(ctx, now)
	if now.Hour() >= sweep.hour {
		sweep.markSwept(now)
	}
}

func (sweep *DailySweep) tick(ctx context.Context) {
	now := sweep.now().In(sweep.location)
	if now.Hour() < sweep.hour || !sweep.markSwept(now) {
		return
	}
	sweep.run(ctx, now)
}

// markSwept records today and reports whether it was not yet recorded.
func (sweep *DailySweep) markSwept(now time.Time) bool {
	day := now.Format("2006-01-02")

	sweep.mu.Lock()
	defer sweep.mu.Unlock()
	if sweep.lastSweptOn == day {
		return false
	}
	sweep.lastSweptOn = day
	return true
}

func (sweep *DailySweep) run(ctx context.Context, now time.Time) {
	settled, err := sweep.sweeper.ExpireChallenges(ctx, now)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		sweep.logger.Error("challenge sweep failed", zap.Error(err), zap.Int("settled", settled))
		return
	}
	sweep.logger.Info("challenge sweep finished", zap.Int("settled", settled))
}
