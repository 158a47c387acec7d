package autopilot

import (
	"log"
	"math"
	"time"
)

type Phase int

const (
	// PhaseClear is normal driving at the default speed.
	PhaseClear Phase = iota
	// PhaseNoData is clear with no valid depth samples. Throttle is held at zero.
	PhaseNoData
	// PhaseBraking is the first BrakeDuration after an obstacle was seen.
	PhaseBraking
	// PhaseStopped is braking past BrakeDuration.
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseClear:
		return "clear"
	case PhaseNoData:
		return "nodata"
	case PhaseBraking:
		return "braking"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type BrakeState struct {
	Braking        bool
	BrakeStartTime time.Time //zero when not braking
}

type Output struct {
	Speed       float64
	Brake       float64
	Braking     bool
	Phase       Phase
	MinDistance float64
}

type BrakingConfig struct {
	DefaultSpeed  float64
	BrakeDuration time.Duration
}

// BrakingStateMachine stops the vehicle while an obstacle is closer than the
// threshold. Not safe for concurrent use.
type BrakingStateMachine struct {
	cfg   BrakingConfig
	state BrakeState
}

func NewBrakingStateMachine(cfg BrakingConfig) *BrakingStateMachine {
	return &BrakingStateMachine{
		cfg: cfg,
	}
}

func (b *BrakingStateMachine) State() BrakeState {
	return b.state
}

func (b *BrakingStateMachine) Reset() {
	b.state = BrakeState{}
}

// Update advances the machine with one distance sample. Both braking phases
// command zero throttle and zero brake; the vehicle slows by coasting.
func (b *BrakingStateMachine) Update(minDistance, threshold float64, now time.Time) Output {
	if math.IsNaN(minDistance) || math.IsInf(minDistance, 1) {
		if b.state.Braking {
			log.Println("depth data lost, clearing brake")
		}
		b.state = BrakeState{}
		return Output{
			Speed:       0.0,
			Brake:       0.0,
			Braking:     false,
			Phase:       PhaseNoData,
			MinDistance: math.Inf(1),
		}
	}

	if minDistance < threshold {
		if !b.state.Braking {
			log.Printf("obstacle at %.2fm inside threshold %.2fm, braking\n", minDistance, threshold)
			b.state = BrakeState{Braking: true, BrakeStartTime: now}
		}

		phase := PhaseStopped
		if now.Sub(b.state.BrakeStartTime) < b.cfg.BrakeDuration {
			phase = PhaseBraking
		}
		return Output{
			Speed:       0.0,
			Brake:       0.0,
			Braking:     true,
			Phase:       phase,
			MinDistance: minDistance,
		}
	}

	if b.state.Braking {
		log.Printf("path clear at %.2fm, resuming\n", minDistance)
	}
	b.state = BrakeState{}
	return Output{
		Speed:       b.cfg.DefaultSpeed,
		Brake:       0.0,
		Braking:     false,
		Phase:       PhaseClear,
		MinDistance: minDistance,
	}
}
