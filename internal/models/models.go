package models

import (
	"time"
)

const (
	ClientAxesCount = 10
	NeutralValue    = 90
	MaxActuator     = 180
	MinActuator     = 0
)

// Command is one tick of normalized control input. Optional fields are nil when
// the tick carries no change for them.
type Command struct {
	Speed         float64 // 0..1
	Brake         float64 // 0..1
	Steering      float64 // -0.5..0.5, negative is left
	EmergencyStop bool

	Gear           *string
	Trim           *float64
	DepthThreshold *float64
	Record         *bool
	Mode           *string

	TimeStamp time.Time
}

// NeutralCommand holds the vehicle still with the wheels centered.
func NeutralCommand() Command {
	return Command{TimeStamp: time.Now()}
}

type ActuatorFrame struct {
	MotorValue    int
	SteeringValue int
	TimeStamp     time.Time
}

// ControlState is one raw gamepad sample.
type ControlState struct {
	Axes      []float64 `json:"axes"`
	BitButton uint32    `json:"bit_buttons"`
	TimeStamp int64     `json:"time_stamp"`
	Buttons   []bool
}

type Hud struct {
	Lines []string `json:"lines"`
}
