package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/input"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/state"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
	"golang.org/x/sync/errgroup"
)

// Observer runs alongside the stages and only reads shared state.
type Observer interface {
	Start(ctx context.Context) error
}

type Pipeline struct {
	cfg    config.PipelineConfig
	policy OverflowPolicy

	inputs    *input.Manager
	processor *CommandProcessor
	model     *vehicle.ActuationModel
	sink      vehicle.ActuatorIFace
	state     *state.Store

	observers []Observer

	commands *Queue[models.Command]
	frames   *Queue[models.ActuatorFrame]
}

func NewPipeline(cfg config.PipelineConfig, inputs *input.Manager, model *vehicle.ActuationModel, sink vehicle.ActuatorIFace, store *state.Store) (*Pipeline, error) {
	policy, err := ParsePolicy(cfg.QueuePolicy)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		policy:    policy,
		inputs:    inputs,
		processor: NewCommandProcessor(model, store),
		model:     model,
		sink:      sink,
		state:     store,
		commands:  NewQueue[models.Command](cfg.QueueSize, policy),
		frames:    NewQueue[models.ActuatorFrame](cfg.QueueSize, policy),
	}, nil
}

func (p *Pipeline) AddObserver(observer Observer) {
	p.observers = append(p.observers, observer)
}

// Start brings up the sink and inputs, then runs every stage until ctx is
// done or a stage fails. The sink is returned to neutral on every exit path.
func (p *Pipeline) Start(ctx context.Context) error {
	log.Println("starting pipeline...")

	err := p.sink.Init()
	if err != nil {
		err = fmt.Errorf("%w: failed initializing actuator sink: %w", models.ErrFatalInit, err)
		p.state.SetError(err)
		return err
	}
	defer p.teardown()

	err = p.inputs.Initialize()
	if err != nil {
		log.Printf("warning: not every input initialized: %s\n", err.Error())
	}

	group, groupCtx := errgroup.WithContext(ctx)

	inputStage := NewStage("input", nil, p.commands, p.readInput, p.state)
	inputStage.Interval = p.cfg.InputInterval

	commandStage := NewStage("command", p.commands, p.frames, p.processor.Process, p.state)
	commandStage.PollTimeout = p.cfg.PollTimeout

	actuationStage := NewStage("actuation", p.frames, nil, p.actuate, p.state)
	actuationStage.PollTimeout = p.cfg.PollTimeout

	group.Go(func() error {
		return inputStage.Run(groupCtx)
	})
	group.Go(func() error {
		return commandStage.Run(groupCtx)
	})
	group.Go(func() error {
		return actuationStage.Run(groupCtx)
	})

	for _, observer := range p.observers {
		observer := observer
		group.Go(func() error {
			return observer.Start(groupCtx)
		})
	}

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("pipeline stopping due to error - %w", err)
	}
	log.Println("pipeline stopped")
	return nil
}

func (p *Pipeline) readInput(ctx context.Context, _ struct{}) (models.Command, error) {
	cmd := p.inputs.GetCommand(ctx)
	if ctx.Err() != nil {
		return cmd, ErrSkip
	}
	return cmd, nil
}

func (p *Pipeline) actuate(ctx context.Context, frame models.ActuatorFrame) (struct{}, error) {
	err := p.sink.Send(frame)
	if err != nil {
		if !errors.Is(err, models.ErrTransport) {
			err = fmt.Errorf("%w: %w", models.ErrTransport, err)
		}
		return struct{}{}, fmt.Errorf("failed sending frame %d,%d: %w", frame.MotorValue, frame.SteeringValue, err)
	}
	return struct{}{}, nil
}

func (p *Pipeline) teardown() {
	log.Println("stopping pipeline...")
	log.Println(describeQueue("command", p.commands))
	log.Println(describeQueue("frame", p.frames))

	err := p.sink.Send(p.model.NeutralFrame())
	if err != nil {
		log.Printf("error: failed sending neutral frame: %s\n", err.Error())
	}
	err = p.sink.Stop()
	if err != nil {
		log.Printf("error: failed stopping actuator sink: %s\n", err.Error())
	}

	err = p.inputs.Close()
	if err != nil {
		log.Printf("error: failed closing inputs: %s\n", err.Error())
	}
	p.state.Update(state.Patch{
		MotorValue:    state.Ptr(p.model.NeutralFrame().MotorValue),
		SteeringValue: state.Ptr(p.model.NeutralFrame().SteeringValue),
	})
}
