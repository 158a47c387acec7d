package input

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func flatFrame(distance float64, at time.Time) DepthFrame {
	data := make([]float64, 10*10)
	for i := range data {
		data[i] = distance
	}
	return DepthFrame{Depth: mat.NewDense(10, 10, data), TimeStamp: at}
}

func TestAutopilotSourceBrakesOnObstacle(t *testing.T) {
	cfg := testConfig()
	store := newTestStore(cfg)
	controls := newTestControls(t, cfg)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	frames := &fakeFrames{frames: []DepthFrame{
		flatFrame(2.0, start),
		flatFrame(0.3, start.Add(100*time.Millisecond)),
		flatFrame(0.3, start.Add(700*time.Millisecond)),
		flatFrame(0.8, start.Add(800*time.Millisecond)),
	}}
	source := NewAutopilotSource(cfg.AutopilotCfg, frames, controls, store)

	expected := []struct {
		speed   float64
		braking bool
	}{
		{speed: 0.5},
		{speed: 0.0, braking: true},
		{speed: 0.0, braking: true},
		{speed: 0.5},
	}

	for i, want := range expected {
		cmd, err := source.Read(context.Background())
		require.NoError(t, err, "frame %d", i)
		assert.Equal(t, want.speed, cmd.Speed, "frame %d", i)
		assert.Equal(t, 0.0, cmd.Brake, "frame %d", i)
		assert.Equal(t, 0.0, cmd.Steering, "frame %d", i)
		require.NotNil(t, cmd.Gear)
		assert.Equal(t, want.braking, store.Snapshot().Braking, "frame %d", i)

		if i == 2 {
			assert.Equal(t, start.Add(100*time.Millisecond), source.BrakeState().BrakeStartTime)
		}
	}
	assert.InDelta(t, 0.8, store.Snapshot().MinDistance, 1e-9)
}

func TestAutopilotSourceUsesLiveThreshold(t *testing.T) {
	cfg := testConfig()
	store := newTestStore(cfg)
	controls := newTestControls(t, cfg)
	frames := &fakeFrames{frames: []DepthFrame{flatFrame(0.65, time.Now()), flatFrame(0.65, time.Now())}}
	source := NewAutopilotSource(cfg.AutopilotCfg, frames, controls, store)

	cmd, err := source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.5, cmd.Speed)

	controls.IncreaseDepthThreshold()
	cmd, err = source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cmd.Speed)
	assert.True(t, store.Snapshot().Braking)
}

func TestAutopilotSourceNoDepthData(t *testing.T) {
	cfg := testConfig()
	store := newTestStore(cfg)
	controls := newTestControls(t, cfg)
	frames := &fakeFrames{frames: []DepthFrame{
		flatFrame(0.2, time.Now()),
		{TimeStamp: time.Now()},
	}}
	source := NewAutopilotSource(cfg.AutopilotCfg, frames, controls, store)

	_, err := source.Read(context.Background())
	require.NoError(t, err)
	require.True(t, source.BrakeState().Braking)

	cmd, err := source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cmd.Speed)
	assert.False(t, source.BrakeState().Braking)
	assert.True(t, math.IsInf(store.Snapshot().MinDistance, 1))
}

func TestAutopilotSourceGrabFailure(t *testing.T) {
	cfg := testConfig()
	store := newTestStore(cfg)
	controls := newTestControls(t, cfg)
	frames := &fakeFrames{frames: []DepthFrame{flatFrame(0.2, time.Now())}}
	source := NewAutopilotSource(cfg.AutopilotCfg, frames, controls, store)

	_, err := source.Read(context.Background())
	require.NoError(t, err)

	frames.grabErr = errors.New("usb reset")
	_, err = source.Read(context.Background())
	assert.ErrorIs(t, err, models.ErrDevice)
	assert.False(t, source.BrakeState().Braking)
	assert.False(t, store.Snapshot().Braking)
}

func TestAutopilotSourceLifecycle(t *testing.T) {
	cfg := testConfig()
	controls := newTestControls(t, cfg)

	source := NewAutopilotSource(cfg.AutopilotCfg, NoCamera{}, controls, newTestStore(cfg))
	err := source.Init()
	assert.ErrorIs(t, err, models.ErrDevice)
	assert.ErrorIs(t, err, ErrNoCamera)

	frames := &fakeFrames{}
	source = NewAutopilotSource(cfg.AutopilotCfg, frames, controls, newTestStore(cfg))
	require.NoError(t, source.Init())
	require.NoError(t, source.Close())
	assert.True(t, frames.closed)
}

func TestAutopilotSourceLimitsGrabsToFPS(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	Now = func() time.Time { return clock }
	t.Cleanup(func() { Now = time.Now })

	cfg := testConfig()
	cfg.AutopilotCfg.FPS = 10
	controls := newTestControls(t, cfg)
	frames := &fakeFrames{frames: []DepthFrame{flatFrame(0.2, clock), flatFrame(2.0, clock)}}
	source := NewAutopilotSource(cfg.AutopilotCfg, frames, controls, newTestStore(cfg))

	cmd, err := source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cmd.Speed)

	clock = clock.Add(50 * time.Millisecond)
	controls.TrimRight()
	cmd, err = source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cmd.Speed)
	assert.Len(t, frames.frames, 1, "grabbed a frame before the frame interval passed")
	require.NotNil(t, cmd.Trim)
	assert.Equal(t, controls.Trim(), *cmd.Trim)

	clock = clock.Add(50 * time.Millisecond)
	cmd, err = source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.AutopilotCfg.DefaultSpeed, cmd.Speed)
	assert.Empty(t, frames.frames)
}
