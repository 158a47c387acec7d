package input

import (
	"log"
	"sync"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
	"github.com/google/uuid"
)

// Controls holds the operator adjustable settings that both input sources
// stamp onto every command.
type Controls struct {
	lock sync.Mutex

	shifter *vehicle.Shifter

	trim     float64
	trimStep float64
	maxTrim  float64

	depthThreshold   float64
	defaultThreshold float64
	depthStep        float64
	minDepth         float64

	recording   bool
	recordingID string

	emergency bool
	held      bool
}

func NewControls(cfg config.Config, gears *vehicle.GearBox) (*Controls, error) {
	shifter, err := vehicle.NewShifter(gears, cfg.VehicleCfg.StartGear)
	if err != nil {
		return nil, err
	}

	return &Controls{
		shifter:          shifter,
		trimStep:         cfg.GamepadCfg.TrimStep,
		maxTrim:          cfg.GamepadCfg.MaxTrim,
		depthThreshold:   cfg.AutopilotCfg.DepthThreshold,
		defaultThreshold: cfg.AutopilotCfg.DepthThreshold,
		depthStep:        cfg.AutopilotCfg.DepthStep,
		minDepth:         cfg.AutopilotCfg.MinDepth,
	}, nil
}

func (c *Controls) Gear() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.shifter.Current()
}

func (c *Controls) GearUp() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	gear, _ := c.shifter.Up()
	return gear
}

func (c *Controls) GearDown() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	gear, _ := c.shifter.Down()
	return gear
}

func (c *Controls) ToggleReverse() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	gear, _ := c.shifter.ToggleReverse()
	return gear
}

func (c *Controls) SetGear(name string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.shifter.Set(name)
}

func (c *Controls) Trim() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.trim
}

func (c *Controls) TrimLeft() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.trim = vehicle.Clamp(c.trim-c.trimStep, -c.maxTrim, c.maxTrim)
	log.Printf("trim adjusted left: %.3f\n", c.trim)
	return c.trim
}

func (c *Controls) TrimRight() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.trim = vehicle.Clamp(c.trim+c.trimStep, -c.maxTrim, c.maxTrim)
	log.Printf("trim adjusted right: %.3f\n", c.trim)
	return c.trim
}

func (c *Controls) ResetTrim() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.trim = 0.0
}

func (c *Controls) DepthThreshold() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.depthThreshold
}

func (c *Controls) IncreaseDepthThreshold() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.depthThreshold += c.depthStep
	log.Printf("depth threshold increased: %.2fm\n", c.depthThreshold)
	return c.depthThreshold
}

func (c *Controls) DecreaseDepthThreshold() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.depthThreshold = max(c.minDepth, c.depthThreshold-c.depthStep)
	log.Printf("depth threshold decreased: %.2fm\n", c.depthThreshold)
	return c.depthThreshold
}

func (c *Controls) ResetDepthThreshold() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.depthThreshold = c.defaultThreshold
}

// ToggleRecording flips recording and returns the new flag with the id of the
// recording session it started (empty when stopping).
func (c *Controls) ToggleRecording() (bool, string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.recording = !c.recording
	if c.recording {
		c.recordingID = uuid.NewString()
		log.Printf("recording started: %s\n", c.recordingID)
	} else {
		log.Printf("recording stopped: %s\n", c.recordingID)
		c.recordingID = ""
	}
	return c.recording, c.recordingID
}

func (c *Controls) Recording() (bool, string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.recording, c.recordingID
}

func (c *Controls) ToggleEmergencyStop() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.emergency = !c.emergency
	log.Printf("emergency stop: %t\n", c.emergency)
	return c.emergency
}

// HoldEmergencyStop sets the momentary emergency stop that lasts while a button is held.
func (c *Controls) HoldEmergencyStop(held bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if held != c.held {
		log.Printf("emergency stop held: %t\n", held)
	}
	c.held = held
}

func (c *Controls) EmergencyStop() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.emergency || c.held
}

// Stamp copies the current settings onto cmd and clamps steering with trim applied.
func (c *Controls) Stamp(cmd models.Command) models.Command {
	c.lock.Lock()
	defer c.lock.Unlock()

	gear := c.shifter.Current()
	trim := c.trim
	threshold := c.depthThreshold
	recording := c.recording

	cmd.Steering = vehicle.Clamp(cmd.Steering+trim, -MaxSteering, MaxSteering)
	cmd.Gear = &gear
	cmd.Trim = &trim
	cmd.DepthThreshold = &threshold
	cmd.Record = &recording
	cmd.EmergencyStop = cmd.EmergencyStop || c.emergency || c.held
	return cmd
}
