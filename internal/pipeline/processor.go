package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/Speshl/gorrc_pilot/internal/state"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
)

// CommandProcessor turns commands into actuator frames.
type CommandProcessor struct {
	model *vehicle.ActuationModel
	state *state.Store

	stopped bool
}

func NewCommandProcessor(model *vehicle.ActuationModel, store *state.Store) *CommandProcessor {
	return &CommandProcessor{
		model: model,
		state: store,
	}
}

// Process applies the gear carried by cmd and converts it. An unknown gear is
// recorded and the previous gear is used. A command failing validation is
// rejected and no frame is produced for it.
func (p *CommandProcessor) Process(ctx context.Context, cmd models.Command) (models.ActuatorFrame, error) {
	if cmd.Gear != nil && *cmd.Gear != p.model.CurrentGear() {
		err := p.model.SetGear(*cmd.Gear)
		if err != nil {
			err = fmt.Errorf("failed applying gear: %w", err)
			log.Printf("warning: %s\n", err.Error())
			p.state.SetError(err)
		}
	}

	if cmd.EmergencyStop {
		if !p.stopped {
			log.Println("emergency stop engaged, holding neutral")
		}
		p.stopped = true
		frame := p.model.NeutralFrame()
		p.publish(frame)
		return frame, nil
	}
	if p.stopped {
		log.Println("emergency stop released")
		p.stopped = false
	}

	frame, err := p.model.Frame(cmd)
	if err != nil {
		return models.ActuatorFrame{}, fmt.Errorf("command rejected: %w", err)
	}
	p.publish(frame)
	return frame, nil
}

func (p *CommandProcessor) publish(frame models.ActuatorFrame) {
	p.state.Update(state.Patch{
		Gear:          state.Ptr(p.model.CurrentGear()),
		MotorValue:    state.Ptr(frame.MotorValue),
		SteeringValue: state.Ptr(frame.SteeringValue),
	})
}
