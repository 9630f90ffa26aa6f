package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionKeeper abstracts the session manager's reconciliation entry
// point.
type SessionKeeper interface {
	Reauthenticate(ctx context.Context, leeway time.Duration)
}

// RefresherConfig controls how frequently the held identity is
// reconciled with its expiry.
type RefresherConfig struct {
	Interval time.Duration
	Leeway   time.Duration
}

// SessionRefresher periodically re-establishes expiring anonymous
// identities and signs out identities that expired out-of-band. It is
// the stand-in for the auth provider's push-based state stream.
type SessionRefresher struct {
	sessions SessionKeeper
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      RefresherConfig
}

func NewSessionRefresher(sessions SessionKeeper, logger *zap.Logger, cfg RefresherConfig) *SessionRefresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Leeway <= 0 {
		cfg.Leeway = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sr := &SessionRefresher{
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sr.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		sr.sessions.Reauthenticate(ctx, sr.cfg.Leeway)
	})

	return sr
}

// Start launches the cron scheduler.
func (sr *SessionRefresher) Start() {
	if sr == nil || sr.cron == nil {
		return
	}
	sr.cron.Start()
	sr.logger.Info("session refresher started")
}

// Stop gracefully stops the scheduler.
func (sr *SessionRefresher) Stop(ctx context.Context) {
	if sr == nil || sr.cron == nil {
		return
	}
	stopCtx := sr.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sr.logger.Info("session refresher stopped")
}
