package main

import (
	"log"
	"os"
	"strings"

	"github.com/Speshl/gorrc_pilot/internal/app"
	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/urfave/cli"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "gorrc_pilot"
	cliApp.Usage = "drive an rc car from a gamepad or the depth camera autopilot"
	cliApp.Flags = flags()
	cliApp.Action = func(c *cli.Context) error {
		cfg := config.GetConfig()
		applyFlags(c, &cfg)

		pilot, err := app.NewApp(cfg, app.Devices{})
		if err != nil {
			return err
		}
		return pilot.Start()
	}

	err := cliApp.Run(os.Args)
	if err != nil {
		log.Printf("client shutdown with error: %s", err.Error())
		os.Exit(1)
	}
	log.Println("client shutdown successfully")
}

func flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "sink",
			Usage: "actuator sink: serial, pca9685 or pipwm",
		},
		cli.StringFlag{
			Name:  "serial-port",
			Usage: "serial port of the motor controller",
		},
		cli.IntFlag{
			Name:  "baud",
			Usage: "serial baud rate",
		},
		cli.StringFlag{
			Name:  "mode",
			Usage: "starting input mode: gamepad or autopilot",
		},
		cli.StringFlag{
			Name:  "gear",
			Usage: "starting gear",
		},
		cli.StringFlag{
			Name:  "gamepad",
			Usage: "gamepad sample stream: stdin, none or a file path",
		},
		cli.BoolFlag{
			Name:  "telemetry",
			Usage: "report state to the telemetry server",
		},
		cli.StringFlag{
			Name:  "server",
			Usage: "telemetry server address",
		},
	}
}

// applyFlags overrides the environment config with any flags given. Names are
// lower cased like their environment counterparts.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("sink") {
		cfg.SinkCfg.Sink = strings.ToLower(c.String("sink"))
	}
	if c.IsSet("serial-port") {
		cfg.SinkCfg.SerialCfg.Port = c.String("serial-port")
	}
	if c.IsSet("baud") {
		cfg.SinkCfg.SerialCfg.BaudRate = c.Int("baud")
	}
	if c.IsSet("mode") {
		cfg.PipelineCfg.StartMode = strings.ToLower(c.String("mode"))
	}
	if c.IsSet("gear") {
		cfg.VehicleCfg.StartGear = strings.ToLower(c.String("gear"))
	}
	if c.IsSet("gamepad") {
		cfg.GamepadCfg.Device = c.String("gamepad")
	}
	if c.IsSet("telemetry") {
		cfg.TelemetryCfg.Enabled = c.Bool("telemetry")
	}
	if c.IsSet("server") {
		cfg.TelemetryCfg.Server = c.String("server")
	}
}
