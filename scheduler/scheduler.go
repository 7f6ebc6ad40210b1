package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper resolves matches whose check-in deadline has passed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type Config struct {
	CronSpec string // standard 5-field spec, e.g. "*/15 * * * *"
	// Timeout bounds a single sweep; zero means one minute.
	Timeout  time.Duration
}

type Scheduler struct {
	c       *cron.Cron
	config  Config
	sweeper Sweeper
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

func New(cfg Config, sweeper Sweeper, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	s := &Scheduler{
		c:       cron.New(),
		config:  cfg,
		sweeper: sweeper,
		logger:  logger,
	}
	if _, err := s.c.AddFunc(cfg.CronSpec, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// RunOnce performs a single sweep. Overlapping ticks are skipped.
func (s *Scheduler) RunOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("deadline sweep still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	start := time.Now()
	resolved, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("deadline sweep failed", slog.Any("error", err))
		return
	}
	s.logger.Info("deadline sweep done",
		slog.Int("resolved", resolved),
		slog.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.logger.Info("starting deadline sweep scheduler", slog.String("cron", s.config.CronSpec))
	s.c.Start()
}

// Stop halts the cron and waits for a running sweep to return.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}
