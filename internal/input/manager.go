package input

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/state"
)

const MaxSteering = 0.5

// Source produces one command per call. Read may block on the device but
// must return when ctx is done.
type Source interface {
	Init() error
	Read(ctx context.Context) (models.Command, error)
	Close() error
}

// Poller is implemented by sources that must keep processing buttons while
// another source is active.
type Poller interface {
	Poll(ctx context.Context) error
}

type Manager struct {
	lock    sync.RWMutex
	sources map[string]Source
	order   []string
	failed  map[string]bool

	errLock  sync.Mutex
	reported map[string]string

	mode          string
	manualMode    string
	autopilotMode string

	state *state.Store
}

func NewManager(cfg config.PipelineConfig, store *state.Store) *Manager {
	return &Manager{
		sources:       make(map[string]Source),
		failed:        make(map[string]bool),
		reported:      make(map[string]string),
		mode:          cfg.StartMode,
		manualMode:    cfg.ManualMode,
		autopilotMode: cfg.AutopilotMode,
		state:         store,
	}
}

func (m *Manager) Register(mode string, src Source) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.sources[mode]; !ok {
		m.order = append(m.order, mode)
	}
	m.sources[mode] = src
	delete(m.failed, mode)
	log.Printf("input source registered: %s\n", mode)
}

func (m *Manager) Mode() string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.mode
}

func (m *Manager) SetMode(mode string) error {
	m.lock.Lock()
	if _, ok := m.sources[mode]; !ok {
		m.lock.Unlock()
		return fmt.Errorf("%w: no input source registered for mode %q", models.ErrConfiguration, mode)
	}
	m.mode = mode
	m.lock.Unlock()

	log.Printf("input mode set: %s\n", mode)
	m.state.Update(state.Patch{Mode: state.Ptr(mode)})
	return nil
}

// ToggleMode flips between the manual and autopilot modes.
func (m *Manager) ToggleMode() string {
	m.lock.Lock()
	if m.mode == m.manualMode {
		m.mode = m.autopilotMode
	} else {
		m.mode = m.manualMode
	}
	mode := m.mode
	m.lock.Unlock()

	log.Printf("input mode toggled: %s\n", mode)
	m.state.Update(state.Patch{Mode: state.Ptr(mode)})
	return mode
}

// Initialize brings up every source. A failing source is logged and recorded
// but does not stop the others. Failed sources are no longer polled while inactive.
func (m *Manager) Initialize() error {
	var errs []error
	for _, named := range m.snapshotSources() {
		err := named.src.Init()

		m.lock.Lock()
		m.failed[named.mode] = err != nil
		m.lock.Unlock()

		if err != nil {
			err = fmt.Errorf("failed initializing %s input: %w", named.mode, err)
			log.Printf("error: %s\n", err.Error())
			m.state.SetError(err)
			errs = append(errs, err)
			continue
		}
		log.Printf("input source initialized: %s\n", named.mode)
	}
	return errors.Join(errs...)
}

func (m *Manager) Close() error {
	var errs []error
	for _, named := range m.snapshotSources() {
		err := named.src.Close()
		if err != nil {
			err = fmt.Errorf("failed closing %s input: %w", named.mode, err)
			log.Printf("error: %s\n", err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetCommand reads the active source and publishes its settings. Failures
// yield a neutral command and are recorded in the shared state.
func (m *Manager) GetCommand(ctx context.Context) models.Command {
	m.lock.RLock()
	mode := m.mode
	active, ok := m.sources[mode]
	pollers := make(map[string]Poller)
	for name, src := range m.sources {
		if name == mode || m.failed[name] {
			continue
		}
		if poller, isPoller := src.(Poller); isPoller {
			pollers[name] = poller
		}
	}
	m.lock.RUnlock()

	for name, poller := range pollers {
		err := poller.Poll(ctx)
		if err != nil {
			if ctx.Err() == nil {
				m.report("poll:"+name, fmt.Errorf("failed polling %s input: %w", name, err))
			}
			continue
		}
		m.recovered("poll:" + name)
	}

	if !ok {
		err := fmt.Errorf("%w: no input source registered for mode %q", models.ErrConfiguration, mode)
		m.report("read:"+mode, err)
		return m.neutral(mode)
	}

	cmd, err := active.Read(ctx)
	if err != nil {
		if ctx.Err() == nil {
			if !errors.Is(err, models.ErrDevice) {
				err = fmt.Errorf("%w: %w", models.ErrDevice, err)
			}
			m.report("read:"+mode, fmt.Errorf("failed reading %s input: %w", mode, err))
		}
		return m.neutral(mode)
	}
	m.recovered("read:" + mode)

	// a button action may have switched modes during the read
	current := m.Mode()
	cmd.Mode = &current
	m.publish(cmd)
	return cmd
}

// report logs and records err unless the same failure was already reported
// for key.
func (m *Manager) report(key string, err error) {
	m.errLock.Lock()
	defer m.errLock.Unlock()
	if m.reported[key] == err.Error() {
		return
	}
	m.reported[key] = err.Error()
	log.Printf("error: %s\n", err.Error())
	m.state.SetError(err)
}

func (m *Manager) recovered(key string) {
	m.errLock.Lock()
	defer m.errLock.Unlock()
	if _, ok := m.reported[key]; ok {
		log.Printf("input recovered: %s\n", key)
		delete(m.reported, key)
	}
}

func (m *Manager) neutral(mode string) models.Command {
	cmd := models.NeutralCommand()
	cmd.Mode = &mode
	return cmd
}

// publish records the operator settings. The gear is published by the command
// stage once it has been applied.
func (m *Manager) publish(cmd models.Command) {
	m.state.Update(state.Patch{
		Mode:           cmd.Mode,
		Trim:           cmd.Trim,
		DepthThreshold: cmd.DepthThreshold,
		Recording:      cmd.Record,
	})
}

type namedSource struct {
	mode string
	src  Source
}

// snapshotSources lists the sources in registration order.
func (m *Manager) snapshotSources() []namedSource {
	m.lock.RLock()
	defer m.lock.RUnlock()
	sources := make([]namedSource, 0, len(m.order))
	for _, mode := range m.order {
		sources = append(sources, namedSource{mode: mode, src: m.sources[mode]})
	}
	return sources
}
