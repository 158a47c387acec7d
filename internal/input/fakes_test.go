package input

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/state"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		PipelineCfg: config.PipelineConfig{
			StartMode:     "gamepad",
			ManualMode:    "gamepad",
			AutopilotMode: "autopilot",
		},
		GamepadCfg: config.GamepadConfig{
			DeadZone: 0.05,
			TrimStep: 0.1,
			MaxTrim:  0.5,
		},
		AutopilotCfg: config.AutopilotConfig{
			DepthThreshold: 0.6,
			DepthStep:      0.1,
			MinDepth:       0.1,
			ROISize:        0.3,
			DefaultSpeed:   0.5,
			BrakeDuration:  config.DefaultBrakeDuration,
		},
		VehicleCfg: config.VehicleConfig{
			NeutralValue:   90,
			StartGear:      "turtle",
			EmergencyLatch: true,
			Gears:          config.DefaultGears,
		},
	}
}

func newTestControls(t *testing.T, cfg config.Config) *Controls {
	t.Helper()
	gears, err := vehicle.NewGearBox(cfg.VehicleCfg.Gears)
	require.NoError(t, err)
	controls, err := NewControls(cfg, gears)
	require.NoError(t, err)
	return controls
}

func newTestStore(cfg config.Config) *state.Store {
	return state.NewStore(state.DefaultSnapshot(cfg))
}

// fakeReader replays queued samples, repeating the last one once drained.
type fakeReader struct {
	lock    sync.Mutex
	samples []models.ControlState
	last    models.ControlState
	openErr error
	readErr error
	opened  bool
	closed  bool
}

func (f *fakeReader) Open() error {
	f.opened = true
	return f.openErr
}

func (f *fakeReader) Read(ctx context.Context) (models.ControlState, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.readErr != nil {
		return models.ControlState{}, f.readErr
	}
	if len(f.samples) > 0 {
		f.last = f.samples[0]
		f.samples = f.samples[1:]
	}
	return f.last, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func (f *fakeReader) push(samples ...models.ControlState) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.samples = append(f.samples, samples...)
}

// pad builds a sample with the triggers released and the given overrides.
func pad(steer, throttle, brake float64, pressed ...int) models.ControlState {
	axes := make([]float64, models.ClientAxesCount)
	axes[AxisSteer] = steer
	axes[AxisRightTrigger] = throttle
	axes[AxisLeftTrigger] = brake

	var bits uint32
	for _, b := range pressed {
		bits |= 1 << b
	}
	return models.ControlState{Axes: axes, BitButton: bits}
}

type fakeFrames struct {
	frames  []DepthFrame
	openErr error
	grabErr error
	closed  bool
}

func (f *fakeFrames) Open() error {
	return f.openErr
}

func (f *fakeFrames) Grab(ctx context.Context) (DepthFrame, error) {
	if f.grabErr != nil {
		return DepthFrame{}, f.grabErr
	}
	if len(f.frames) == 0 {
		return DepthFrame{}, errors.New("out of frames")
	}
	frame := f.frames[0]
	f.frames = f.frames[1:]
	return frame, nil
}

func (f *fakeFrames) Close() error {
	f.closed = true
	return nil
}

type fakeSource struct {
	cmd     models.Command
	initErr error
	readErr error
	reads   int
	polls   int
	inits   int
	closes  int
}

func (f *fakeSource) Init() error {
	f.inits++
	return f.initErr
}

func (f *fakeSource) Read(ctx context.Context) (models.Command, error) {
	f.reads++
	return f.cmd, f.readErr
}

func (f *fakeSource) Close() error {
	f.closes++
	return nil
}

type fakePollingSource struct {
	fakeSource
}

func (f *fakePollingSource) Poll(ctx context.Context) error {
	f.polls++
	return nil
}
