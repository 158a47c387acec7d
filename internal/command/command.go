package command

import (
	"fmt"
	"strings"

	"github.com/Speshl/gorrc_pilot/internal/command/arduino"
	pca9685 "github.com/Speshl/gorrc_pilot/internal/command/pca9685"
	pipwm "github.com/Speshl/gorrc_pilot/internal/command/pi_pwm"
	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
)

const (
	SinkSerial  = "serial"
	SinkPCA9685 = "pca9685"
	SinkPiPWM   = "pipwm"
)

// NewSink builds the actuator sink named in cfg.
func NewSink(cfg config.SinkConfig, neutral int) (vehicle.ActuatorIFace, error) {
	switch strings.ToLower(cfg.Sink) {
	case SinkSerial, "arduino":
		return arduino.NewCommand(cfg.SerialCfg, neutral), nil
	case SinkPCA9685:
		return pca9685.NewCommand(cfg.ServoCfg), nil
	case SinkPiPWM, "pi_pwm":
		return pipwm.NewCommand(cfg.ServoCfg), nil
	default:
		return nil, fmt.Errorf("%w: unsupported actuator sink %q", models.ErrConfiguration, cfg.Sink)
	}
}
