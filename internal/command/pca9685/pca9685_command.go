package command

import (
	"fmt"
	"log"
	"sync"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
	"github.com/googolgl/go-i2c"
	"github.com/googolgl/go-pca9685"
)

const (
	MaxValue = 1.0
	MinValue = 0.0
	AcRange  = pca9685.ServoRangeDef

	MaxSupportedServos = 16
)

type fractionSetter interface {
	Fraction(value float32) error
}

// CommandDriver drives the ESC and steering servo from a PCA9685 board.
type CommandDriver struct {
	cfg    config.ServoDriverConfig
	lock   sync.Mutex
	servos map[string]Servo
}

type Servo struct {
	name     string
	inverted bool
	offset   float64
	servo    fractionSetter
}

func NewCommand(cfg config.ServoDriverConfig) *CommandDriver {
	return &CommandDriver{
		cfg: cfg,
	}
}

func (c *CommandDriver) Init() error {
	i2c, err := i2c.New(c.cfg.Address, c.cfg.I2CDevice)
	if err != nil {
		return fmt.Errorf("error starting i2c with address - %w", err)
	}

	driver, err := pca9685.New(i2c, nil)
	if err != nil {
		return fmt.Errorf("error getting servo driver - %w", err)
	}

	servos := make(map[string]Servo, MaxSupportedServos)
	for i := range c.cfg.ServoCfgs {
		if i >= MaxSupportedServos {
			break
		}
		servoCfg := c.cfg.ServoCfgs[i]
		servos[servoCfg.Name] = Servo{
			name:     servoCfg.Name,
			inverted: servoCfg.Inverted,
			offset:   float64(servoCfg.Offset) / 100,
			servo: driver.ServoNew(servoCfg.Channel, &pca9685.ServOptions{
				AcRange:  AcRange,
				MinPulse: float32(servoCfg.MinPulse),
				MaxPulse: float32(servoCfg.MaxPulse),
			}),
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

func (c *CommandDriver) CenterAll() {
	log.Println("centering all servos")
	c.lock.Lock()
	defer c.lock.Unlock()
	for i := range c.servos {
		err := c.servos[i].servo.Fraction(0.5)
		if err != nil {
			log.Printf("error: failed centering servo %s: %s\n", c.servos[i].name, err.Error())
		}
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

	mappedValue := vehicle.MapToRange(value, models.MinActuator, models.MaxActuator, MinValue, MaxValue)
	mappedValue = vehicle.Clamp(mappedValue+val.offset, MinValue, MaxValue)
	if val.inverted {
		mappedValue = MaxValue - mappedValue
	}

	err := val.servo.Fraction(float32(mappedValue))
	if err != nil {
		return fmt.Errorf("%w: failed setting servo value - name: %s value: %.2f - error: %w", models.ErrTransport, name, mappedValue, err)
	}
	return nil
}

func (c *CommandDriver) Stop() error {
	c.CenterAll()
	return nil
}
