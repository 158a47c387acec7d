package vehicle

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/models"
)

type ActuationModel struct {
	lock    sync.RWMutex
	gears   *GearBox
	neutral int
	current string
}

func NewActuationModel(gears *GearBox, neutral int, startGear string) (*ActuationModel, error) {
	if neutral <= models.MinActuator || neutral >= models.MaxActuator {
		return nil, fmt.Errorf("%w: neutral value %d must be inside (%d,%d)", models.ErrConfiguration, neutral, models.MinActuator, models.MaxActuator)
	}

	_, err := gears.Lookup(startGear)
	if err != nil {
		return nil, fmt.Errorf("failed selecting start gear: %w", err)
	}

	return &ActuationModel{
		gears:   gears,
		neutral: neutral,
		current: startGear,
	}, nil
}

func (m *ActuationModel) Gears() *GearBox {
	return m.gears
}

func (m *ActuationModel) CurrentGear() string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current
}

// SetGear switches the current gear. An unknown name leaves the current gear in place.
func (m *ActuationModel) SetGear(name string) error {
	_, err := m.gears.Lookup(name)
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.current != name {
		log.Printf("gear changed: %s -> %s\n", m.current, name)
	}
	m.current = name
	return nil
}

// Convert maps normalized speed, brake and steering into motor and steering
// actuator values. Braking always opposes the direction of the named gear.
func (m *ActuationModel) Convert(speed, brake, steering float64, gearName string) (int, int, error) {
	gear, err := m.gears.Lookup(gearName)
	if err != nil {
		return m.neutral, m.neutral, err
	}

	if math.IsNaN(speed) || speed < 0 || speed > 1 {
		return m.neutral, m.neutral, &InvalidSpeedError{Value: speed}
	}
	if math.IsNaN(brake) || brake < 0 || brake > 1 {
		return m.neutral, m.neutral, &InvalidSpeedError{Value: brake}
	}

	var motorValue int
	if brake > 0 {
		motorValue, err = gear.Opposing().Scale(brake, m.neutral)
	} else {
		motorValue, err = gear.Scale(speed, m.neutral)
	}
	if err != nil {
		return m.neutral, m.neutral, err
	}

	steeringValue, err := m.Steering(steering)
	if err != nil {
		return m.neutral, m.neutral, err
	}
	return motorValue, steeringValue, nil
}

// Steering maps -0.5..0.5 onto the servo range. Negative (left) moves above neutral.
func (m *ActuationModel) Steering(steering float64) (int, error) {
	if math.IsNaN(steering) {
		return m.neutral, fmt.Errorf("%w: steering is NaN", models.ErrValidation)
	}
	value := math.Round(float64(m.neutral) - steering*float64(m.neutral))
	return ClampInt(int(value), models.MinActuator, models.MaxActuator), nil
}

// Frame converts a command using the current gear.
func (m *ActuationModel) Frame(cmd models.Command) (models.ActuatorFrame, error) {
	motorValue, steeringValue, err := m.Convert(cmd.Speed, cmd.Brake, cmd.Steering, m.CurrentGear())
	if err != nil {
		return models.ActuatorFrame{}, err
	}
	return models.ActuatorFrame{
		MotorValue:    motorValue,
		SteeringValue: steeringValue,
		TimeStamp:     time.Now(),
	}, nil
}

func (m *ActuationModel) NeutralFrame() models.ActuatorFrame {
	return models.ActuatorFrame{
		MotorValue:    m.neutral,
		SteeringValue: m.neutral,
		TimeStamp:     time.Now(),
	}
}
