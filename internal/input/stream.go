package input

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Speshl/gorrc_pilot/internal/models"
)

var (
	ErrNoCamera  = errors.New("no depth camera driver linked")
	ErrNoGamepad = errors.New("no gamepad configured")
)

// StreamGamepad reads newline delimited JSON ControlState samples, as written
// by an external joystick poller, and serves the most recent one.
type StreamGamepad struct {
	r io.Reader

	lock    sync.Mutex
	latest  models.ControlState
	readErr error
	started bool
}

func NewStreamGamepad(r io.Reader) *StreamGamepad {
	return &StreamGamepad{
		r:      r,
		latest: restingSample(),
	}
}

func restingSample() models.ControlState {
	axes := make([]float64, models.ClientAxesCount)
	axes[AxisLeftTrigger] = MinInput
	axes[AxisRightTrigger] = MinInput
	return models.ControlState{Axes: axes}
}

func (s *StreamGamepad) Open() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		return nil
	}
	s.started = true
	go s.scan()
	return nil
}

func (s *StreamGamepad) scan() {
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		sample := models.ControlState{}
		err := json.Unmarshal(line, &sample)
		if err != nil {
			log.Printf("warning: gamepad sample not parsed - error: %s\n", err)
			continue
		}

		s.lock.Lock()
		if sample.TimeStamp == 0 || sample.TimeStamp >= s.latest.TimeStamp {
			s.latest = sample
		}
		s.lock.Unlock()
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	s.lock.Lock()
	s.readErr = err
	s.latest = restingSample()
	s.lock.Unlock()
}

// Read returns the most recent sample without waiting. Once the stream ends
// it returns a resting sample with the error that ended it.
func (s *StreamGamepad) Read(ctx context.Context) (models.ControlState, error) {
	if ctx.Err() != nil {
		return models.ControlState{}, ctx.Err()
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.readErr != nil {
		return s.latest, fmt.Errorf("gamepad stream ended: %w", s.readErr)
	}
	return s.latest, nil
}

func (s *StreamGamepad) Close() error {
	if closer, ok := s.r.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NoCamera stands in when no depth camera driver is linked.
type NoCamera struct{}

func (NoCamera) Open() error {
	return ErrNoCamera
}

func (NoCamera) Grab(ctx context.Context) (DepthFrame, error) {
	return DepthFrame{}, ErrNoCamera
}

func (NoCamera) Close() error {
	return nil
}

// NoGamepad stands in when the vehicle runs without a controller.
type NoGamepad struct{}

func (NoGamepad) Open() error {
	return ErrNoGamepad
}

func (NoGamepad) Read(ctx context.Context) (models.ControlState, error) {
	return models.ControlState{}, ErrNoGamepad
}

func (NoGamepad) Close() error {
	return nil
}
