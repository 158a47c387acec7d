package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

func GetConfig() Config {
	cfg := Config{
		PipelineCfg:  GetPipelineConfig(),
		SinkCfg:      GetSinkConfig(),
		GamepadCfg:   GetGamepadConfig(),
		AutopilotCfg: GetAutopilotConfig(),
		HudCfg:       GetHudConfig(),
		TelemetryCfg: GetTelemetryConfig(),
		VehicleCfg:   GetVehicleConfig(),
	}

	log.Printf("app Config: \n%+v\n", cfg)
	return cfg
}

func GetPipelineConfig() PipelineConfig {
	return PipelineConfig{
		QueueSize:     GetIntEnv("QUEUESIZE", DefaultQueueSize),
		QueuePolicy:   GetStringEnv("QUEUEPOLICY", DefaultQueuePolicy),
		PollTimeout:   GetDurationEnv("POLLTIMEOUT", DefaultPollTimeout),
		InputInterval: GetDurationEnv("INPUTINTERVAL", DefaultInputInterval),
		StartMode:     GetStringEnv("MODE", DefaultStartMode),
		ManualMode:    DefaultStartMode,
		AutopilotMode: DefaultAutopilotMode,
	}
}

func GetSinkConfig() SinkConfig {
	return SinkConfig{
		Sink:      GetStringEnv("SINK", DefaultSink),
		SerialCfg: GetSerialConfig(),
		ServoCfg:  GetServoDriverConfig(),
	}
}

func GetSerialConfig() SerialConfig {
	return SerialConfig{
		Port:     GetRawStringEnv("SERIALPORT", DefaultSerialPort),
		BaudRate: GetIntEnv("BAUDRATE", DefaultBaudRate),
		DataBits: GetIntEnv("DATABITS", DefaultDataBits),
		StopBits: GetIntEnv("STOPBITS", DefaultStopBits),
		Parity:   GetStringEnv("PARITY", DefaultParity),
	}
}

func GetServoDriverConfig() ServoDriverConfig {
	servoCfg := ServoDriverConfig{
		Address:   DefaultAddress,
		I2CDevice: GetRawStringEnv("I2CDEVICE", DefaultI2CDevice),
		ServoCfgs: make([]ServoConfig, 0, MaxSupportedServos),
	}

	for i := 0; i < MaxSupportedServos; i++ {
		envPrefix := fmt.Sprintf("SERVO%d_", i)
		cfg := ServoConfig{
			Name:     GetStringEnv(envPrefix+"NAME", ""),
			Channel:  GetIntEnv(envPrefix+"CHANNEL", i),
			MaxPulse: float64(GetIntEnv(envPrefix+"MAXPULSE", DefaultMaxPulse)),
			MinPulse: float64(GetIntEnv(envPrefix+"MINPULSE", DefaultMinPulse)),
			Inverted: GetBoolEnv(envPrefix+"INVERTED", DefaultInverted),
			Offset:   GetIntEnv(envPrefix+"MIDOFFSET", DefaultOffset),
		}

		if cfg.Name != "" {
			log.Printf("found config for servo: %s\n", cfg.Name)
			servoCfg.ServoCfgs = append(servoCfg.ServoCfgs, cfg)
		}
	}

	if len(servoCfg.ServoCfgs) == 0 {
		servoCfg.ServoCfgs = []ServoConfig{
			{Name: DefaultMotorServo, Channel: 0, MaxPulse: DefaultMaxPulse, MinPulse: DefaultMinPulse},
			{Name: DefaultSteeringServo, Channel: 1, MaxPulse: DefaultMaxPulse, MinPulse: DefaultMinPulse},
		}
	}
	return servoCfg
}

func GetGamepadConfig() GamepadConfig {
	return GamepadConfig{
		Device:   GetRawStringEnv("GAMEPAD", DefaultGamepadDevice),
		DeadZone: GetFloatEnv("DEADZONE", DefaultInputDeadZone),
		TrimStep: GetFloatEnv("TRIMSTEP", DefaultTrimStep),
		MaxTrim:  GetFloatEnv("MAXTRIM", DefaultMaxTrim),
	}
}

func GetAutopilotConfig() AutopilotConfig {
	envPrefix := "AUTOPILOT_"
	return AutopilotConfig{
		DepthThreshold: GetFloatEnv(envPrefix+"DEPTH_THRESHOLD", DefaultDepthThreshold),
		DepthStep:      GetFloatEnv(envPrefix+"DEPTH_STEP", DefaultDepthStep),
		MinDepth:       GetFloatEnv(envPrefix+"MIN_DEPTH", DefaultMinDepth),
		ROISize:        GetFloatEnv(envPrefix+"ROI_SIZE", DefaultROISize),
		DefaultSpeed:   GetFloatEnv(envPrefix+"SPEED", DefaultAutoSpeed),
		BrakeDuration:  GetDurationEnv(envPrefix+"BRAKE_DURATION", DefaultBrakeDuration),
		FPS:            GetIntEnv(envPrefix+"FPS", DefaultCameraFPS),
	}
}

func GetHudConfig() HudConfig {
	return HudConfig{
		Interval:  GetDurationEnv("HUDINTERVAL", DefaultHudInterval),
		NetDevice: GetStringEnv("NETDEVICE", DefaultNetDevice),
		LogEvery:  GetIntEnv("HUDLOGEVERY", DefaultHudLogEvery),
	}
}

func GetTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled: GetBoolEnv("TELEMETRY", DefaultTelemetryEnabled),
		Server:  GetStringEnv("SERVER", DefaultTelemetryServer),
		Every:   GetDurationEnv("TELEMETRYEVERY", DefaultTelemetryEvery),
	}
}

func GetVehicleConfig() VehicleConfig {
	vehicleCfg := VehicleConfig{
		NeutralValue:   GetIntEnv("NEUTRAL", DefaultNeutralValue),
		StartGear:      GetStringEnv("GEAR", DefaultStartGear),
		EmergencyLatch: GetBoolEnv("ESTOPLATCH", DefaultEmergencyLatch),
		Gears:          make([]GearConfig, 0, MaxSupportedGears),
	}

	for i := 0; i < MaxSupportedGears; i++ {
		envPrefix := fmt.Sprintf("GEAR%d_", i)
		gearCfg := GearConfig{
			Name:      GetStringEnv(envPrefix+"NAME", ""),
			MaxSpeed:  GetIntEnv(envPrefix+"MAX", 0),
			Direction: GetStringEnv(envPrefix+"DIR", "forward"),
		}

		if gearCfg.Name != "" {
			log.Printf("found config for gear: %s\n", gearCfg.Name)
			vehicleCfg.Gears = append(vehicleCfg.Gears, gearCfg)
		}
	}

	if len(vehicleCfg.Gears) == 0 {
		vehicleCfg.Gears = append(vehicleCfg.Gears, DefaultGears...)
	}
	return vehicleCfg
}

func GetIntEnv(env string, defaultValue int) int {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseInt(strings.Trim(envValue, "\r"), 10, 32)
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s\n", env, err)
			return defaultValue
		} else {
			return int(value)
		}
	}
}

func GetBoolEnv(env string, defaultValue bool) bool {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseBool(strings.Trim(envValue, "\r"))
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s\n", env, err)
			return defaultValue
		} else {
			return value
		}
	}
}

func GetStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		return strings.ToLower(strings.Trim(envValue, "\r"))
	}
}

// GetRawStringEnv is GetStringEnv without lower casing, for device paths.
func GetRawStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	return strings.Trim(envValue, "\r")
}

func GetFloatEnv(env string, defaultValue float64) float64 {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseFloat(strings.Trim(envValue, "\r"), 64)
		if err != nil {
			log.Printf("warning:%s not parsed - error: %s\n", env, err)
			return defaultValue
		}
		return value
	}
}

func GetDurationEnv(env string, defaultValue time.Duration) time.Duration {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.Trim(envValue, "\r"))
	if err != nil {
		log.Printf("warning:%s not parsed - error: %s\n", env, err)
		return defaultValue
	}
	return value
}
