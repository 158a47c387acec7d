package input

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/autopilot"
	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/state"
	"gonum.org/v1/gonum/mat"
)

// Now is the clock used to stamp commands and frames without a timestamp.
var Now = time.Now

// DepthFrame is one depth map in meters. Imagery is not carried.
type DepthFrame struct {
	Depth     *mat.Dense
	TimeStamp time.Time
}

// FrameSource is the depth camera collaborator.
type FrameSource interface {
	Open() error
	Grab(ctx context.Context) (DepthFrame, error)
	Close() error
}

type AutopilotSource struct {
	cfg      config.AutopilotConfig
	frames   FrameSource
	brakes   *autopilot.BrakingStateMachine
	controls *Controls
	state    *state.Store

	lastGrab time.Time
	last     models.Command
}

func NewAutopilotSource(cfg config.AutopilotConfig, frames FrameSource, controls *Controls, store *state.Store) *AutopilotSource {
	return &AutopilotSource{
		cfg:    cfg,
		frames: frames,
		brakes: autopilot.NewBrakingStateMachine(autopilot.BrakingConfig{
			DefaultSpeed:  cfg.DefaultSpeed,
			BrakeDuration: cfg.BrakeDuration,
		}),
		controls: controls,
		state:    store,
	}
}

func (a *AutopilotSource) Init() error {
	err := a.frames.Open()
	if err != nil {
		return fmt.Errorf("%w: failed opening depth camera: %w", models.ErrDevice, err)
	}
	log.Println("depth camera initialized")
	return nil
}

func (a *AutopilotSource) Close() error {
	err := a.frames.Close()
	if err != nil {
		return fmt.Errorf("failed closing depth camera: %w", err)
	}
	log.Println("depth camera closed")
	return nil
}

// Read grabs at most FPS frames per second. Between frames the previous
// output is repeated with the current operator settings.
func (a *AutopilotSource) Read(ctx context.Context) (models.Command, error) {
	if a.cfg.FPS > 0 && !a.lastGrab.IsZero() && Now().Sub(a.lastGrab) < time.Second/time.Duration(a.cfg.FPS) {
		return a.controls.Stamp(a.last), nil
	}

	frame, err := a.frames.Grab(ctx)
	if err != nil {
		a.lastGrab = time.Time{}
		a.brakes.Reset()
		a.state.Update(state.Patch{Braking: state.Ptr(false)})
		return models.Command{}, fmt.Errorf("%w: failed grabbing depth frame: %w", models.ErrDevice, err)
	}

	now := frame.TimeStamp
	if now.IsZero() {
		now = Now()
	}

	minDistance := math.Inf(1)
	if frame.Depth != nil {
		minDistance = autopilot.MinDistance(frame.Depth, a.cfg.ROISize)
	}

	out := a.brakes.Update(minDistance, a.controls.DepthThreshold(), now)
	a.state.Update(state.Patch{
		MinDistance: state.Ptr(out.MinDistance),
		Braking:     state.Ptr(out.Braking),
	})

	a.lastGrab = Now()
	a.last = models.Command{
		Speed:     out.Speed,
		Brake:     out.Brake,
		Steering:  0.0,
		TimeStamp: now,
	}
	return a.controls.Stamp(a.last), nil
}

func (a *AutopilotSource) BrakeState() autopilot.BrakeState {
	return a.brakes.State()
}
