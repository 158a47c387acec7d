package vehicle

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/Speshl/gorrc_pilot/internal/models"
)

type ButtonState struct {
	Previous bool
	Current  bool
}

// ButtonHandler fires a registered action once per false->true transition.
type ButtonHandler struct {
	lock    sync.Mutex
	actions map[int]func() error
	states  map[int]ButtonState
}

func NewButtonHandler() *ButtonHandler {
	return &ButtonHandler{
		actions: make(map[int]func() error),
		states:  make(map[int]ButtonState),
	}
}

func (h *ButtonHandler) RegisterAction(buttonID int, action func() error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.actions[buttonID] = action
	if _, ok := h.states[buttonID]; !ok {
		h.states[buttonID] = ButtonState{}
	}
}

// Update records the new button states and runs the action of every button
// that was just pressed. Actions run after the states are stored, in button order.
func (h *ButtonHandler) Update(states map[int]bool) {
	pressed := make([]int, 0, len(states))

	h.lock.Lock()
	for buttonID, current := range states {
		prev := h.states[buttonID].Current
		if current && !prev {
			pressed = append(pressed, buttonID)
		}
		h.states[buttonID] = ButtonState{Previous: prev, Current: current}
	}

	actions := make(map[int]func() error, len(pressed))
	for _, buttonID := range pressed {
		if action, ok := h.actions[buttonID]; ok {
			actions[buttonID] = action
		}
	}
	h.lock.Unlock()

	sort.Ints(pressed)
	for _, buttonID := range pressed {
		action, ok := actions[buttonID]
		if !ok {
			continue
		}
		err := runAction(buttonID, action)
		if err != nil {
			log.Printf("error: button %d action failed: %s\n", buttonID, err.Error())
		}
	}
}

func (h *ButtonHandler) IsPressed(buttonID int) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.states[buttonID].Current
}

func (h *ButtonHandler) State(buttonID int) (ButtonState, bool) {
	h.lock.Lock()
	defer h.lock.Unlock()
	state, ok := h.states[buttonID]
	return state, ok
}

func runAction(buttonID int, action func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("button %d action panicked: %v", buttonID, r)
		}
	}()
	return action()
}

// ButtonStates turns a gamepad sample into a button id keyed map.
func ButtonStates(state models.ControlState, masks []uint32) map[int]bool {
	buttons := state.Buttons
	if len(buttons) == 0 {
		buttons = ParseButtons(state.BitButton, masks)
	}

	states := make(map[int]bool, len(buttons))
	for i := range buttons {
		states[i] = buttons[i]
	}
	return states
}
