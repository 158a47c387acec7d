package autopilot

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBrakingSequence(t *testing.T) {
	fsm := NewBrakingStateMachine(BrakingConfig{DefaultSpeed: 0.5, BrakeDuration: 500 * time.Millisecond})

	start := time.Unix(1000, 0)
	distances := []float64{2.0, 0.3, 0.3, 0.3, 0.8}
	wantBraking := []bool{false, true, true, true, false}
	wantPhase := []Phase{PhaseClear, PhaseBraking, PhaseBraking, PhaseStopped, PhaseClear}
	offsets := []time.Duration{0, 100 * time.Millisecond, 300 * time.Millisecond, 700 * time.Millisecond, 800 * time.Millisecond}

	for i, distance := range distances {
		out := fsm.Update(distance, 0.6, start.Add(offsets[i]))
		assert.Equal(t, wantBraking[i], out.Braking, "sample %d", i)
		assert.Equal(t, wantBraking[i], fsm.State().Braking, "sample %d", i)
		assert.Equal(t, wantPhase[i], out.Phase, "sample %d", i)
		assert.Equal(t, 0.0, out.Brake)
		if out.Braking {
			assert.Equal(t, 0.0, out.Speed)
		} else {
			assert.Equal(t, 0.5, out.Speed)
		}
	}
}

func TestBrakeStartTimeRecordedOnce(t *testing.T) {
	fsm := NewBrakingStateMachine(BrakingConfig{DefaultSpeed: 0.5, BrakeDuration: time.Second})
	start := time.Unix(50, 0)

	fsm.Update(0.2, 0.6, start)
	fsm.Update(0.1, 0.6, start.Add(time.Second))
	assert.Equal(t, start, fsm.State().BrakeStartTime)

	fsm.Update(0.6, 0.6, start.Add(2*time.Second))
	assert.False(t, fsm.State().Braking, "distance equal to the threshold clears")
	assert.True(t, fsm.State().BrakeStartTime.IsZero())
}

func TestNoDepthDataClearsBrake(t *testing.T) {
	fsm := NewBrakingStateMachine(BrakingConfig{DefaultSpeed: 0.5, BrakeDuration: time.Second})
	now := time.Now()

	fsm.Update(0.2, 0.6, now)
	require.True(t, fsm.State().Braking)

	out := fsm.Update(math.Inf(1), 0.6, now)
	assert.False(t, out.Braking)
	assert.Equal(t, PhaseNoData, out.Phase)
	assert.Equal(t, 0.0, out.Speed)
	assert.Equal(t, BrakeState{}, fsm.State())

	out = fsm.Update(math.NaN(), 0.6, now)
	assert.False(t, out.Braking)
}

func TestMinDistance(t *testing.T) {
	depth := mat.NewDense(10, 10, nil)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			depth.Set(i, j, 5.0)
		}
	}
	// outside the 30% ROI (rows/cols 4..5)
	depth.Set(0, 0, 0.1)
	depth.Set(4, 4, math.Inf(1))
	depth.Set(4, 5, -1)
	depth.Set(5, 4, math.NaN())
	depth.Set(5, 5, 1.25)

	assert.Equal(t, 1.25, MinDistance(depth, 0.3))
	assert.Equal(t, 0.1, MinDistance(depth, 1.0))
}

func TestMinDistanceEmpty(t *testing.T) {
	assert.True(t, math.IsInf(MinDistance(nil, 0.3), 1))

	tiny := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	assert.True(t, math.IsInf(MinDistance(tiny, 0.3), 1), "roi rounds down to nothing")

	invalid := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			invalid.Set(i, j, math.Inf(1))
		}
	}
	assert.True(t, math.IsInf(MinDistance(invalid, 1.0), 1))
}

func TestMinDistanceGenericMatrix(t *testing.T) {
	depth := mat.NewDense(6, 6, nil)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			depth.Set(i, j, float64(i+j+1))
		}
	}

	// a transpose is not a *mat.Dense so the generic view is used
	assert.Equal(t, MinDistance(depth, 0.5), MinDistance(depth.T(), 0.5))
}

func TestROI(t *testing.T) {
	r0, r1, c0, c1 := ROI(720, 1280, 0.3)
	assert.Equal(t, 252, r0)
	assert.Equal(t, 468, r1)
	assert.Equal(t, 448, c0)
	assert.Equal(t, 832, c1)

	r0, r1, c0, c1 = ROI(10, 10, 0)
	assert.Equal(t, [4]int{0, 0, 0, 0}, [4]int{r0, r1, c0, c1})
}
