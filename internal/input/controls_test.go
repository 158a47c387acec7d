package input

import (
	"math"
	"testing"

	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlsGearShifting(t *testing.T) {
	controls := newTestControls(t, testConfig())

	assert.Equal(t, "turtle", controls.Gear())
	assert.Equal(t, "slow", controls.GearUp())
	assert.Equal(t, "medium", controls.GearUp())
	assert.Equal(t, "reverse", controls.ToggleReverse())
	assert.Equal(t, "medium", controls.ToggleReverse())
	assert.Equal(t, "slow", controls.GearDown())

	require.NoError(t, controls.SetGear("fast"))
	assert.Error(t, controls.SetGear("warp"))
	assert.Equal(t, "fast", controls.Gear())
}

func TestControlsTrimIsBounded(t *testing.T) {
	controls := newTestControls(t, testConfig())

	for i := 0; i < 10; i++ {
		controls.TrimLeft()
	}
	assert.InDelta(t, -0.5, controls.Trim(), 1e-9)

	controls.TrimRight()
	assert.InDelta(t, -0.4, controls.Trim(), 1e-9)

	controls.ResetTrim()
	assert.Equal(t, 0.0, controls.Trim())
}

func TestControlsDepthThresholdFloor(t *testing.T) {
	controls := newTestControls(t, testConfig())

	assert.InDelta(t, 0.7, controls.IncreaseDepthThreshold(), 1e-9)
	for i := 0; i < 10; i++ {
		controls.DecreaseDepthThreshold()
	}
	assert.InDelta(t, 0.1, controls.DepthThreshold(), 1e-9)

	controls.ResetDepthThreshold()
	assert.Equal(t, 0.6, controls.DepthThreshold())
}

func TestControlsRecordingToggle(t *testing.T) {
	controls := newTestControls(t, testConfig())

	recording, id := controls.ToggleRecording()
	assert.True(t, recording)
	assert.NotEmpty(t, id)

	current, currentID := controls.Recording()
	assert.True(t, current)
	assert.Equal(t, id, currentID)

	recording, id = controls.ToggleRecording()
	assert.False(t, recording)
	assert.Empty(t, id)
}

func TestControlsEmergencyStop(t *testing.T) {
	controls := newTestControls(t, testConfig())
	assert.False(t, controls.EmergencyStop())

	assert.True(t, controls.ToggleEmergencyStop())
	assert.True(t, controls.EmergencyStop())
	assert.False(t, controls.ToggleEmergencyStop())

	controls.HoldEmergencyStop(true)
	assert.True(t, controls.EmergencyStop())
	controls.HoldEmergencyStop(false)
	assert.False(t, controls.EmergencyStop())
}

func TestControlsStamp(t *testing.T) {
	controls := newTestControls(t, testConfig())
	controls.TrimRight()
	controls.TrimRight()

	cmd := controls.Stamp(models.Command{Speed: 0.4, Steering: 0.45})

	assert.Equal(t, 0.4, cmd.Speed)
	assert.Equal(t, MaxSteering, cmd.Steering, "trimmed steering not clamped")
	require.NotNil(t, cmd.Gear)
	assert.Equal(t, "turtle", *cmd.Gear)
	require.NotNil(t, cmd.Trim)
	assert.InDelta(t, 0.2, *cmd.Trim, 1e-9)
	require.NotNil(t, cmd.DepthThreshold)
	assert.Equal(t, 0.6, *cmd.DepthThreshold)
	require.NotNil(t, cmd.Record)
	assert.False(t, *cmd.Record)
	assert.False(t, cmd.EmergencyStop)

	controls.ToggleEmergencyStop()
	assert.True(t, controls.Stamp(models.Command{}).EmergencyStop)
}

func TestControlsStampKeepsNaNSteering(t *testing.T) {
	controls := newTestControls(t, testConfig())

	cmd := controls.Stamp(models.Command{Steering: math.NaN()})
	assert.True(t, math.IsNaN(cmd.Steering), "NaN must reach validation")
}
