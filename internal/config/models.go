package config

import "time"

const (
	MaxSupportedServos = 16
	MaxSupportedGears  = 8
	AppEnvBase         = "GORRC_"

	// Pipeline
	DefaultQueueSize      = 4
	DefaultQueuePolicy    = "dropoldest"
	DefaultPollTimeout    = 100 * time.Millisecond
	DefaultInputInterval  = 16 * time.Millisecond //~60hz like the gamepad loop
	DefaultHudInterval    = 250 * time.Millisecond
	DefaultStartMode      = "gamepad"
	DefaultAutopilotMode  = "autopilot"
	DefaultNeutralValue   = 90
	DefaultStartGear      = "turtle"
	DefaultTrimStep       = 2.0 / 90
	DefaultMaxTrim        = 0.5
	DefaultInputDeadZone  = 0.05
	DefaultNetDevice      = "wlan0"
	DefaultHudLogEvery    = 20
	DefaultEmergencyLatch = true

	// Actuator sinks
	DefaultSink       = "serial"
	DefaultSerialPort = "/dev/ttyUSB0"
	DefaultBaudRate   = 9600
	DefaultDataBits   = 8
	DefaultStopBits   = 1
	DefaultParity     = "N"

	DefaultMaxPulse      = 2250 //2000
	DefaultMinPulse      = 750  //1000
	DefaultInverted      = false
	DefaultOffset        = 0
	DefaultAddress       = 0x40
	DefaultI2CDevice     = "/dev/i2c-1"
	DefaultMotorServo    = "esc"
	DefaultSteeringServo = "steer"

	// Gamepad
	DefaultGamepadDevice = "stdin"

	// Autopilot
	DefaultDepthThreshold = 0.6
	DefaultDepthStep      = 0.1
	DefaultMinDepth       = 0.1
	DefaultROISize        = 0.3
	DefaultAutoSpeed      = 0.5
	DefaultBrakeDuration  = 500 * time.Millisecond
	DefaultCameraFPS      = 30

	// Telemetry uplink
	DefaultTelemetryEnabled = false
	DefaultTelemetryServer  = "127.0.0.1:8181"
	DefaultTelemetryEvery   = time.Second
)

// DefaultGears is the stock gear catalog in shift order.
var DefaultGears = []GearConfig{
	{Name: "turtle", MaxSpeed: 15, Direction: "forward"},
	{Name: "slow", MaxSpeed: 30, Direction: "forward"},
	{Name: "medium", MaxSpeed: 50, Direction: "forward"},
	{Name: "fast", MaxSpeed: 100, Direction: "forward"},
	{Name: "reverse", MaxSpeed: 30, Direction: "reverse"},
}

type Config struct {
	PipelineCfg  PipelineConfig
	SinkCfg      SinkConfig
	GamepadCfg   GamepadConfig
	AutopilotCfg AutopilotConfig
	HudCfg       HudConfig
	TelemetryCfg TelemetryConfig
	VehicleCfg   VehicleConfig
}

type PipelineConfig struct {
	QueueSize     int
	QueuePolicy   string
	PollTimeout   time.Duration
	InputInterval time.Duration
	StartMode     string
	ManualMode    string
	AutopilotMode string
}

type SinkConfig struct {
	Sink      string
	SerialCfg SerialConfig
	ServoCfg  ServoDriverConfig
}

type SerialConfig struct {
	Port     string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

type ServoDriverConfig struct {
	Address   byte
	I2CDevice string
	ServoCfgs []ServoConfig
}

type ServoConfig struct {
	Name     string
	Inverted bool
	Channel  int
	MaxPulse float64
	MinPulse float64
	Offset   int
}

type GamepadConfig struct {
	Device   string
	DeadZone float64
	TrimStep float64
	MaxTrim  float64
}

type AutopilotConfig struct {
	DepthThreshold float64
	DepthStep      float64
	MinDepth       float64
	ROISize        float64
	DefaultSpeed   float64
	BrakeDuration  time.Duration
	FPS            int
}

type HudConfig struct {
	Interval  time.Duration
	NetDevice string
	LogEvery  int
}

type TelemetryConfig struct {
	Enabled bool
	Server  string
	Every   time.Duration
}

type VehicleConfig struct {
	NeutralValue   int
	StartGear      string
	EmergencyLatch bool
	Gears          []GearConfig
}

type GearConfig struct {
	Name      string
	MaxSpeed  int
	Direction string
}
