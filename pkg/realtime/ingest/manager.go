package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrAlreadyRunning rejects a start request while a previous run is still
// active or draining.
var ErrAlreadyRunning = errors.New("ingestion already running")

type Status string

const (
	StatusIdle     Status = "Idle"
	StatusRunning         = "Running"
	StatusStopping        = "Stopping"
)

// Driver is a feed source run under the manager's lifecycle: the replay
// driver or a live poller. Run must return once ctx is cancelled and all
// in-flight observations have been handed off.
type Driver interface {
	Run(ctx context.Context, speedMultiplier float64) error
}

// Manager is the explicit Idle -> Running -> Stopping -> Idle state machine
// around a feed driver. Stops are cooperative: the driver drains rather than
// being killed.
type Manager struct {
	driver Driver

	mutex  sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(driver Driver) *Manager {
	return &Manager{
		driver: driver,
		status: StatusIdle,
	}
}

func (m *Manager) Status() Status {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.status
}

func (m *Manager) Start(speedMultiplier float64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.status != StatusIdle {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())

	m.status = StatusRunning
	m.cancel = cancel
	m.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)

		if err := m.driver.Run(ctx, speedMultiplier); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Feed driver stopped with error")
		}

		// release the context even when the driver returned on its own
		cancel()

		m.mutex.Lock()
		m.status = StatusIdle
		m.cancel = nil
		m.mutex.Unlock()
	}(m.done)

	log.Info().Float64("speed", speedMultiplier).Msg("Ingestion started")

	return nil
}

// Stop cancels the driver and waits for it to drain. Stopping while idle is
// a no-op.
func (m *Manager) Stop() {
	m.mutex.Lock()

	if m.status != StatusRunning {
		m.mutex.Unlock()
		return
	}

	m.status = StatusStopping
	cancel := m.cancel
	done := m.done
	m.mutex.Unlock()

	cancel()
	<-done

	log.Info().Msg("Ingestion stopped")
}
