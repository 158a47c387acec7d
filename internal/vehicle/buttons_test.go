package vehicle

import (
	"errors"
	"testing"

	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestButtonHeldFiresOnce(t *testing.T) {
	handler := NewButtonHandler()
	count := 0
	handler.RegisterAction(5, func() error {
		count++
		return nil
	})

	for i := 0; i < 10; i++ {
		handler.Update(map[int]bool{5: true})
	}
	assert.Equal(t, 1, count)

	handler.Update(map[int]bool{5: false})
	assert.Equal(t, 1, count, "release must not fire")
}

func TestButtonToggleFiresTwice(t *testing.T) {
	handler := NewButtonHandler()
	count := 0
	handler.RegisterAction(0, func() error {
		count++
		return nil
	})

	handler.Update(map[int]bool{0: true})
	handler.Update(map[int]bool{0: false})
	handler.Update(map[int]bool{0: true})
	assert.Equal(t, 2, count)
}

func TestButtonUnknownIsTracked(t *testing.T) {
	handler := NewButtonHandler()

	handler.Update(map[int]bool{9: true})
	assert.True(t, handler.IsPressed(9))

	state, ok := handler.State(9)
	assert.True(t, ok)
	assert.Equal(t, ButtonState{Previous: false, Current: true}, state)

	handler.Update(map[int]bool{9: false})
	assert.False(t, handler.IsPressed(9))
	assert.False(t, handler.IsPressed(42))
}

func TestButtonActionFailureIsIsolated(t *testing.T) {
	handler := NewButtonHandler()
	fired := map[int]bool{}
	handler.RegisterAction(1, func() error {
		fired[1] = true
		return errors.New("nope")
	})
	handler.RegisterAction(2, func() error {
		panic("kaboom")
	})
	handler.RegisterAction(3, func() error {
		fired[3] = true
		return nil
	})

	assert.NotPanics(t, func() {
		handler.Update(map[int]bool{1: true, 2: true, 3: true})
	})
	assert.True(t, fired[1])
	assert.True(t, fired[3], "a failing action must not stop the others")
	assert.True(t, handler.IsPressed(2))
}

func TestButtonActionMayRegister(t *testing.T) {
	handler := NewButtonHandler()
	handler.RegisterAction(0, func() error {
		handler.RegisterAction(1, func() error { return nil })
		return nil
	})

	handler.Update(map[int]bool{0: true})
	_, ok := handler.State(1)
	assert.True(t, ok)
}

func TestButtonStatesFromBits(t *testing.T) {
	masks := BuildButtonMasks()
	states := ButtonStates(models.ControlState{BitButton: 1<<4 | 1<<7}, masks)

	assert.Len(t, states, 32)
	assert.True(t, states[4])
	assert.True(t, states[7])
	assert.False(t, states[0])

	states = ButtonStates(models.ControlState{Buttons: []bool{true, false}}, masks)
	assert.Equal(t, map[int]bool{0: true, 1: false}, states)
}

func TestMapToRange(t *testing.T) {
	assert.Equal(t, 0.5, MapToRange(0, -1, 1, 0, 1))
	assert.Equal(t, 1.0, MapToRange(2, -1, 1, 0, 1))
	assert.Equal(t, 0.0, MapToRange(-2, -1, 1, 0, 1))
	assert.Equal(t, 0.0, GetValueWithMidDeadZone(0.03, 0, 0.05))
	assert.Equal(t, 0.2, GetValueWithMidDeadZone(0.2, 0, 0.05))
	assert.Equal(t, 0.0, GetValueWithLowDeadZone(0.01, 0, 0.05))
	assert.Equal(t, 3, ClampInt(7, 0, 3))
}
