package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Speshl/gorrc_pilot/internal/command"
	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/hud"
	"github.com/Speshl/gorrc_pilot/internal/input"
	"github.com/Speshl/gorrc_pilot/internal/pipeline"
	"github.com/Speshl/gorrc_pilot/internal/state"
	"github.com/Speshl/gorrc_pilot/internal/telemetry"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
	"golang.org/x/sync/errgroup"
)

// Devices holds the hardware collaborators. Nil fields are built from config.
type Devices struct {
	Gamepad   input.GamepadReader
	Camera    input.FrameSource
	Sink      vehicle.ActuatorIFace
	Telemetry telemetry.Client
	NetStats  hud.NetStats
}

type App struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	Cfg config.Config

	state    *state.Store
	model    *vehicle.ActuationModel
	controls *input.Controls
	inputs   *input.Manager
	pipeline *pipeline.Pipeline
	hud      *hud.Hud
}

func NewApp(cfg config.Config, devices Devices) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:       ctx,
		ctxCancel: cancel,
		Cfg:       cfg,
	}

	err := app.build(devices)
	if err != nil {
		cancel()
		return nil, err
	}
	return app, nil
}

func (a *App) build(devices Devices) error {
	gears, err := vehicle.NewGearBox(a.Cfg.VehicleCfg.Gears)
	if err != nil {
		return fmt.Errorf("failed building gears: %w", err)
	}

	a.model, err = vehicle.NewActuationModel(gears, a.Cfg.VehicleCfg.NeutralValue, a.Cfg.VehicleCfg.StartGear)
	if err != nil {
		return fmt.Errorf("failed building actuation model: %w", err)
	}

	a.state = state.NewStore(state.DefaultSnapshot(a.Cfg))
	log.Printf("session started: %s\n", a.state.Snapshot().SessionID)

	a.controls, err = input.NewControls(a.Cfg, gears)
	if err != nil {
		return fmt.Errorf("failed building controls: %w", err)
	}

	a.inputs = input.NewManager(a.Cfg.PipelineCfg, a.state)

	gamepad := devices.Gamepad
	if gamepad == nil {
		gamepad = newGamepadReader(a.Cfg.GamepadCfg)
	}
	latch := a.Cfg.VehicleCfg.EmergencyLatch
	handler := vehicle.NewButtonHandler()
	input.BindDefaultActions(handler, a.controls, a.inputs, a.state, latch)
	a.inputs.Register(a.Cfg.PipelineCfg.ManualMode, input.NewGamepadSource(a.Cfg.GamepadCfg, latch, gamepad, handler, a.controls))

	camera := devices.Camera
	if camera == nil {
		camera = input.NoCamera{}
	}
	a.inputs.Register(a.Cfg.PipelineCfg.AutopilotMode, input.NewAutopilotSource(a.Cfg.AutopilotCfg, camera, a.controls, a.state))

	err = a.inputs.SetMode(a.Cfg.PipelineCfg.StartMode)
	if err != nil {
		return fmt.Errorf("failed selecting start mode: %w", err)
	}

	sink := devices.Sink
	if sink == nil {
		sink, err = command.NewSink(a.Cfg.SinkCfg, a.Cfg.VehicleCfg.NeutralValue)
		if err != nil {
			return err
		}
	}

	a.pipeline, err = pipeline.NewPipeline(a.Cfg.PipelineCfg, a.inputs, a.model, sink, a.state)
	if err != nil {
		return err
	}

	netStats := devices.NetStats
	if netStats == nil {
		netStats = hud.ProcNetStats
	}
	a.hud = hud.NewHud(a.Cfg.HudCfg, a.state, netStats)
	a.pipeline.AddObserver(a.hud)

	if a.Cfg.TelemetryCfg.Enabled {
		client := devices.Telemetry
		if client == nil {
			client, err = telemetry.NewSocketClient(a.Cfg.TelemetryCfg.Server)
			if err != nil {
				return err
			}
		}
		a.pipeline.AddObserver(telemetry.NewUplink(a.Cfg.TelemetryCfg, client, a.state, a.hud.Subscribe()))
	}
	return nil
}

func newGamepadReader(cfg config.GamepadConfig) input.GamepadReader {
	switch cfg.Device {
	case "none", "":
		return input.NoGamepad{}
	case "stdin", "-":
		return input.NewStreamGamepad(io.NopCloser(os.Stdin))
	default:
		file, err := os.Open(cfg.Device)
		if err != nil {
			log.Printf("error: failed opening gamepad %s: %s\n", cfg.Device, err.Error())
			return input.NoGamepad{}
		}
		return input.NewStreamGamepad(file)
	}
}

func (a *App) State() *state.Store {
	return a.state
}

func (a *App) Stop() {
	a.ctxCancel()
}

// Start runs the pipeline until a signal arrives or Stop is called.
func (a *App) Start() error {
	group, groupCtx := errgroup.WithContext(a.ctx)
	log.Println("starting...")

	//kill listener
	group.Go(func() error {
		signalChannel := make(chan os.Signal, 1)
		signal.Notify(signalChannel, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(signalChannel)
		select {
		case sig := <-signalChannel:
			log.Printf("received signal: %s\n", sig)
			a.ctxCancel()
			return fmt.Errorf("received signal: %s: %w", sig, context.Canceled)
		case <-groupCtx.Done():
			log.Println("closing signal goroutine")
			return groupCtx.Err()
		}
	})

	group.Go(func() error {
		err := a.pipeline.Start(groupCtx)
		if err != nil {
			return err
		}
		return context.Canceled
	})

	err := group.Wait()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("context was cancelled")
			return nil
		}
		return fmt.Errorf("client stopping due to error - %w", err)
	}

	log.Println("shutting down")
	return nil
}
