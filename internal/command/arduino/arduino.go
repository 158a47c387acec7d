package arduino

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"go.bug.st/serial"
)

// Opener opens the serial port. Replaced in tests.
type Opener func(path string, mode *serial.Mode) (io.WriteCloser, error)

func openSerial(path string, mode *serial.Mode) (io.WriteCloser, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// CommandDriver writes "motor,steering\n" lines to a microcontroller.
type CommandDriver struct {
	cfg     config.SerialConfig
	neutral int
	open    Opener

	lock sync.Mutex
	port io.WriteCloser
}

func NewCommand(cfg config.SerialConfig, neutral int) *CommandDriver {
	return &CommandDriver{
		cfg:     cfg,
		neutral: neutral,
		open:    openSerial,
	}
}

// WithOpener swaps the port opener.
func (c *CommandDriver) WithOpener(open Opener) *CommandDriver {
	c.open = open
	return c
}

func (c *CommandDriver) Init() error {
	mode, err := SerialMode(c.cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}

	port, err := c.open(c.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("failed opening serial port %s: %w", c.cfg.Port, err)
	}

	c.lock.Lock()
	c.port = port
	c.lock.Unlock()

	log.Printf("arduino connected on %s at %d baud\n", c.cfg.Port, mode.BaudRate)
	return nil
}

func (c *CommandDriver) Send(frame models.ActuatorFrame) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.write(frame.MotorValue, frame.SteeringValue)
}

func (c *CommandDriver) write(motorValue, steeringValue int) error {
	if c.port == nil {
		return fmt.Errorf("%w: serial port not open", models.ErrTransport)
	}
	_, err := fmt.Fprintf(c.port, "%d,%d\n", motorValue, steeringValue)
	if err != nil {
		return fmt.Errorf("%w: failed writing command: %w", models.ErrTransport, err)
	}
	return nil
}

// Stop writes a neutral command and closes the port.
func (c *CommandDriver) Stop() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.port == nil {
		return nil
	}

	err := c.write(c.neutral, c.neutral)
	if err != nil {
		log.Printf("error: failed sending stop: %s\n", err.Error())
	}

	err = c.port.Close()
	c.port = nil
	if err != nil {
		return fmt.Errorf("failed closing serial port: %w", err)
	}
	log.Println("arduino disconnected")
	return nil
}

// Normalize validates the serial options and fills in defaults.
func Normalize(cfg config.SerialConfig) (config.SerialConfig, error) {
	opts := cfg
	if opts.BaudRate <= 0 {
		opts.BaudRate = config.DefaultBaudRate
	}

	if opts.DataBits == 0 {
		opts.DataBits = config.DefaultDataBits
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = config.DefaultStopBits
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	opts.Parity = parity
	return opts, nil
}

func SerialMode(cfg config.SerialConfig) (*serial.Mode, error) {
	opts, err := Normalize(cfg)
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}
	return mode, nil
}
