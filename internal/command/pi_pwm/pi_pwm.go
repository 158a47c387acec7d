package pipwm

import (
	"fmt"
	"log"
	"sync"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	Frequency          = 100000
	CycleLength        = uint32(2000)
	MaxSupportedServos = 2
)

var PinMap = []int{12, 13} //Servo0, Servo1

type dutySetter interface {
	DutyCycle(dutyLen, cycleLen uint32)
}

// CommandDriver drives the ESC and steering servo from the Pi hardware PWM pins.
type CommandDriver struct {
	cfg    config.ServoDriverConfig
	lock   sync.Mutex
	servos map[string]Servo
}

type Servo struct {
	name     string
	inverted bool
	offset   float64
	servo    dutySetter
	maxValue uint32
	minValue uint32
}

func NewCommand(cfg config.ServoDriverConfig) *CommandDriver {
	return &CommandDriver{
		cfg: cfg,
	}
}

func (c *CommandDriver) Init() error {
	err := rpio.Open()
	if err != nil {
		return fmt.Errorf("failed opening rpio: %w", err)
	}

	servos := make(map[string]Servo, MaxSupportedServos)
	for i := range c.cfg.ServoCfgs {
		if i >= MaxSupportedServos {
			break
		}

		servoCfg := c.cfg.ServoCfgs[i]
		pin := rpio.Pin(PinMap[i])
		pin.Mode(rpio.Pwm)
		pin.Freq(Frequency)
		servos[servoCfg.Name] = Servo{
			name:     servoCfg.Name,
			inverted: servoCfg.Inverted,
			offset:   float64(servoCfg.Offset) / 100,
			servo:    pin,
			maxValue: uint32(servoCfg.MaxPulse),
			minValue: uint32(servoCfg.MinPulse),
		}
		log.Printf("servo added: %s\n", servoCfg.Name)
	}
	return c.useServos(servos)
}

func (c *CommandDriver) useServos(servos map[string]Servo) error {
	for _, name := range []string{config.DefaultMotorServo, config.DefaultSteeringServo} {
		if _, ok := servos[name]; !ok {
			return fmt.Errorf("%w: no servo configured named %s", models.ErrConfiguration, name)
		}
	}

	c.lock.Lock()
	c.servos = servos
	c.lock.Unlock()
	c.CenterAll()
	return nil
}

func (c *CommandDriver) Stop() error {
	c.CenterAll()
	err := rpio.Close()
	if err != nil {
		return fmt.Errorf("failed closing rpio: %w", err)
	}
	return nil
}

func (c *CommandDriver) CenterAll() {
	log.Println("centering all servos")
	c.lock.Lock()
	defer c.lock.Unlock()
	for i := range c.servos {
		midValue := (c.servos[i].maxValue + c.servos[i].minValue) / 2
		c.servos[i].servo.DutyCycle(midValue, CycleLength)
	}
}

func (c *CommandDriver) Send(frame models.ActuatorFrame) error {
	err := c.Set(config.DefaultMotorServo, float64(frame.MotorValue))
	if err != nil {
		return err
	}
	return c.Set(config.DefaultSteeringServo, float64(frame.SteeringValue))
}

// Set moves the named servo to an actuator value in 0..180.
func (c *CommandDriver) Set(name string, value float64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	val, ok := c.servos[name]
	if !ok {
		return fmt.Errorf("%w: servo %s not initialized", models.ErrTransport, name)
	}

	minValue := float64(val.minValue)
	maxValue := float64(val.maxValue)
	span := maxValue - minValue

	mappedValue := vehicle.MapToRange(value, models.MinActuator, models.MaxActuator, minValue, maxValue)
	mappedValue = vehicle.Clamp(mappedValue+val.offset*span, minValue, maxValue)
	if val.inverted {
		mappedValue = maxValue - (mappedValue - minValue)
	}

	val.servo.DutyCycle(uint32(mappedValue), CycleLength)
	return nil
}
