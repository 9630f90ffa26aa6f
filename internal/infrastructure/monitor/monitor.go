package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Prober performs a single reachability check against the remote
// service. It reports a boolean and never errors.
type Prober interface {
	Healthy(ctx context.Context) bool
}

// Monitor keeps an advisory view of remote reachability. Callers
// consult IsConnected before mutating operations to fail fast with a
// clear message instead of letting a remote call hang. It is a
// one-shot advisory check, not a circuit breaker.
type Monitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	status Status
	mu     sync.RWMutex
	stopCh chan struct{}
}

func New(prober Prober, interval, timeout time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsConnected returns the last observed reachability. It never blocks
// on the network.
func (m *Monitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Remote
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Check performs a synchronous probe and records the result. Used at
// boot before the background loop has produced a sample.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	reachable := m.prober != nil && m.prober.Healthy(probeCtx)

	m.mu.Lock()
	m.status = Status{Remote: reachable, LastCheck: time.Now()}
	m.mu.Unlock()

	if !reachable {
		m.logger.Debug("remote service unreachable")
	}
	return reachable
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Check(context.Background())
		case <-m.stopCh:
			return
		}
	}
}
