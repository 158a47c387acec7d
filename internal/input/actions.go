package input

import (
	"github.com/Speshl/gorrc_pilot/internal/state"
	"github.com/Speshl/gorrc_pilot/internal/vehicle"
)

// BindDefaultActions wires the stock gamepad layout. Without latching the
// emergency stop is only held while Back is down.
func BindDefaultActions(handler *vehicle.ButtonHandler, controls *Controls, manager *Manager, store *state.Store, latchEmergency bool) {
	handler.RegisterAction(ButtonLB, func() error {
		store.Update(state.Patch{Gear: state.Ptr(controls.GearDown())})
		return nil
	})
	handler.RegisterAction(ButtonRB, func() error {
		store.Update(state.Patch{Gear: state.Ptr(controls.GearUp())})
		return nil
	})
	handler.RegisterAction(ButtonB, func() error {
		store.Update(state.Patch{Gear: state.Ptr(controls.ToggleReverse())})
		return nil
	})
	handler.RegisterAction(ButtonStart, func() error {
		manager.ToggleMode()
		return nil
	})
	handler.RegisterAction(ButtonA, func() error {
		recording, id := controls.ToggleRecording()
		store.Update(state.Patch{Recording: state.Ptr(recording), RecordingID: state.Ptr(id)})
		return nil
	})
	handler.RegisterAction(ButtonX, func() error {
		controls.ResetTrim()
		store.Update(state.Patch{Trim: state.Ptr(0.0)})
		return nil
	})
	handler.RegisterAction(ButtonY, func() error {
		controls.ResetDepthThreshold()
		store.Update(state.Patch{DepthThreshold: state.Ptr(controls.DepthThreshold())})
		return nil
	})
	if latchEmergency {
		handler.RegisterAction(ButtonBack, func() error {
			controls.ToggleEmergencyStop()
			return nil
		})
	}

	handler.RegisterAction(DpadLeft, func() error {
		store.Update(state.Patch{Trim: state.Ptr(controls.TrimLeft())})
		return nil
	})
	handler.RegisterAction(DpadRight, func() error {
		store.Update(state.Patch{Trim: state.Ptr(controls.TrimRight())})
		return nil
	})
	handler.RegisterAction(DpadUp, func() error {
		store.Update(state.Patch{DepthThreshold: state.Ptr(controls.IncreaseDepthThreshold())})
		return nil
	})
	handler.RegisterAction(DpadDown, func() error {
		store.Update(state.Patch{DepthThreshold: state.Ptr(controls.DecreaseDepthThreshold())})
		return nil
	})
}
