package vehicle

import (
	"fmt"
	"math"
	"strings"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
)

type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Inverse is the direction that opposes travel in d.
func (d Direction) Inverse() Direction {
	if d == Forward {
		return Reverse
	}
	return Forward
}

func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "forward", "f", "":
		return Forward, nil
	case "reverse", "r":
		return Reverse, nil
	default:
		return Forward, fmt.Errorf("%w: unsupported gear direction %q", models.ErrConfiguration, value)
	}
}

type InvalidSpeedError struct {
	Value float64
}

func (e *InvalidSpeedError) Error() string {
	return fmt.Sprintf("invalid speed value %.3f: must be between 0 and 1", e.Value)
}

func (e *InvalidSpeedError) Unwrap() error {
	return models.ErrValidation
}

type UnknownGearError struct {
	Name string
}

func (e *UnknownGearError) Error() string {
	return fmt.Sprintf("unknown gear %q", e.Name)
}

func (e *UnknownGearError) Unwrap() error {
	return models.ErrConfiguration
}

// Gear scales a normalized value into the actuator range on one side of neutral.
type Gear struct {
	Name      string
	MaxSpeed  int //0-100
	Direction Direction
}

func (g Gear) Scale(value float64, neutral int) (int, error) {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return neutral, &InvalidSpeedError{Value: value}
	}

	scaledSpeed := math.Round(value * float64(g.MaxSpeed))
	if g.Direction == Forward {
		return int(math.Floor(float64(neutral) + scaledSpeed*float64(models.MaxActuator-neutral)/100)), nil
	}
	return int(math.Floor(float64(neutral) - scaledSpeed*float64(neutral)/100)), nil
}

// Opposing returns the same profile pointed against the direction of travel.
func (g Gear) Opposing() Gear {
	return Gear{
		Name:      g.Name,
		MaxSpeed:  g.MaxSpeed,
		Direction: g.Direction.Inverse(),
	}
}

// GearBox is the immutable gear catalog in shift order.
type GearBox struct {
	order []string
	gears map[string]Gear
}

func NewGearBox(cfgs []config.GearConfig) (*GearBox, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("%w: no gears configured", models.ErrConfiguration)
	}

	box := &GearBox{
		order: make([]string, 0, len(cfgs)),
		gears: make(map[string]Gear, len(cfgs)),
	}
	for _, cfg := range cfgs {
		name := strings.ToLower(strings.TrimSpace(cfg.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: gear with empty name", models.ErrConfiguration)
		}
		if _, ok := box.gears[name]; ok {
			return nil, fmt.Errorf("%w: duplicate gear %q", models.ErrConfiguration, name)
		}
		if cfg.MaxSpeed < 0 || cfg.MaxSpeed > 100 {
			return nil, fmt.Errorf("%w: gear %q max speed %d out of range 0-100", models.ErrConfiguration, name, cfg.MaxSpeed)
		}
		direction, err := ParseDirection(cfg.Direction)
		if err != nil {
			return nil, fmt.Errorf("gear %q: %w", name, err)
		}

		box.order = append(box.order, name)
		box.gears[name] = Gear{Name: name, MaxSpeed: cfg.MaxSpeed, Direction: direction}
	}
	return box, nil
}

func (b *GearBox) Lookup(name string) (Gear, error) {
	gear, ok := b.gears[name]
	if !ok {
		return Gear{}, &UnknownGearError{Name: name}
	}
	return gear, nil
}

func (b *GearBox) Names() []string {
	names := make([]string, len(b.order))
	copy(names, b.order)
	return names
}

func (b *GearBox) ForwardNames() []string {
	names := make([]string, 0, len(b.order))
	for _, name := range b.order {
		if b.gears[name].Direction == Forward {
			names = append(names, name)
		}
	}
	return names
}

// ReverseName is the first reverse gear in the catalog, if any.
func (b *GearBox) ReverseName() (string, bool) {
	for _, name := range b.order {
		if b.gears[name].Direction == Reverse {
			return name, true
		}
	}
	return "", false
}
