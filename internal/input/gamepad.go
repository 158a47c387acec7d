package input

import (
	"context"
	"fmt"
	"log"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
)

const (
	//Axis Maps
	AxisSteer        = 0
	AxisLeftTrigger  = 2
	AxisRightTrigger = 5
	AxisHatX         = 6
	AxisHatY         = 7

	//Button Maps
	ButtonA     = 0
	ButtonB     = 1
	ButtonX     = 2
	ButtonY     = 3
	ButtonLB    = 4
	ButtonRB    = 5
	ButtonBack  = 6
	ButtonStart = 7

	//Virtual buttons for the d-pad hat
	DpadLeft  = 100
	DpadRight = 101
	DpadUp    = 102
	DpadDown  = 103

	MaxInput  = 1.0
	MinInput  = -1.0
	HatActive = 0.5
)

// GamepadReader is the raw joystick collaborator. Read returns the latest
// sample and may block until the device delivers one or ctx is done.
type GamepadReader interface {
	Open() error
	Read(ctx context.Context) (models.ControlState, error)
	Close() error
}

type GamepadSource struct {
	cfg      config.GamepadConfig
	reader   GamepadReader
	handler  *vehicle.ButtonHandler
	controls *Controls
	latch    bool

	buttonMasks []uint32
}

func NewGamepadSource(cfg config.GamepadConfig, latchEmergency bool, reader GamepadReader, handler *vehicle.ButtonHandler, controls *Controls) *GamepadSource {
	return &GamepadSource{
		cfg:         cfg,
		reader:      reader,
		handler:     handler,
		controls:    controls,
		latch:       latchEmergency,
		buttonMasks: vehicle.BuildButtonMasks(),
	}
}

func (g *GamepadSource) Init() error {
	err := g.reader.Open()
	if err != nil {
		return fmt.Errorf("%w: failed opening gamepad: %w", models.ErrDevice, err)
	}
	log.Println("gamepad initialized")
	return nil
}

func (g *GamepadSource) Close() error {
	err := g.reader.Close()
	if err != nil {
		return fmt.Errorf("failed closing gamepad: %w", err)
	}
	log.Println("gamepad closed")
	return nil
}

// Poll runs button actions without producing a command.
func (g *GamepadSource) Poll(ctx context.Context) error {
	_, err := g.sample(ctx)
	return err
}

func (g *GamepadSource) Read(ctx context.Context) (models.Command, error) {
	sample, err := g.sample(ctx)
	if err != nil {
		return models.Command{}, err
	}

	cmd := models.Command{
		Speed:     g.mapTrigger(axis(sample, AxisRightTrigger, MinInput)),
		Brake:     g.mapTrigger(axis(sample, AxisLeftTrigger, MinInput)),
		Steering:  vehicle.GetValueWithMidDeadZone(axis(sample, AxisSteer, 0), 0, g.cfg.DeadZone),
		TimeStamp: Now(),
	}
	return g.controls.Stamp(cmd), nil
}

func (g *GamepadSource) sample(ctx context.Context) (models.ControlState, error) {
	sample, err := g.reader.Read(ctx)
	if err != nil {
		return models.ControlState{}, fmt.Errorf("%w: failed reading gamepad: %w", models.ErrDevice, err)
	}

	buttons := vehicle.ButtonStates(sample, g.buttonMasks)
	hatX := axis(sample, AxisHatX, 0)
	hatY := axis(sample, AxisHatY, 0)
	buttons[DpadLeft] = hatX <= -HatActive
	buttons[DpadRight] = hatX >= HatActive
	buttons[DpadUp] = hatY >= HatActive
	buttons[DpadDown] = hatY <= -HatActive

	g.handler.Update(buttons)
	if !g.latch {
		g.controls.HoldEmergencyStop(buttons[ButtonBack])
	}
	return sample, nil
}

// mapTrigger maps a -1..1 trigger axis resting at -1 onto 0..1.
func (g *GamepadSource) mapTrigger(value float64) float64 {
	mapped := vehicle.MapToRange(value, MinInput, MaxInput, 0, 1)
	return vehicle.GetValueWithLowDeadZone(mapped, 0, g.cfg.DeadZone)
}

func axis(sample models.ControlState, index int, fallback float64) float64 {
	if index < 0 || index >= len(sample.Axes) {
		return fallback
	}
	return sample.Axes[index]
}
