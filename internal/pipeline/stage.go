package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/state"
)

// ErrSkip tells a stage that the transform produced nothing to forward.
var ErrSkip = errors.New("nothing to forward")

// Stage runs a transform in its own loop. A stage without an input queue is a
// source and runs its transform every Interval. A stage without an output
// queue is a sink and discards the transform result.
type Stage[In, Out any] struct {
	Name        string
	In          *Queue[In]
	Out         *Queue[Out]
	Transform   func(ctx context.Context, item In) (Out, error)
	PollTimeout time.Duration
	Interval    time.Duration

	state     *state.Store
	processed int64
	failed    int64
}

func NewStage[In, Out any](name string, in *Queue[In], out *Queue[Out], transform func(context.Context, In) (Out, error), store *state.Store) *Stage[In, Out] {
	return &Stage[In, Out]{
		Name:      name,
		In:        in,
		Out:       out,
		Transform: transform,
		state:     store,
	}
}

// Run loops until ctx is done. Transform errors are logged and recorded, the
// loop always continues.
func (s *Stage[In, Out]) Run(ctx context.Context) error {
	log.Printf("starting %s stage\n", s.Name)
	defer func() {
		log.Printf("%s stage stopped: processed %d, failed %d\n", s.Name, s.processed, s.failed)
	}()

	var ticker *time.Ticker
	if s.In == nil && s.Interval > 0 {
		ticker = time.NewTicker(s.Interval)
		defer ticker.Stop()
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		item, err := s.next(ctx, ticker)
		if err != nil {
			if errors.Is(err, ErrQueueTimeout) {
				continue
			}
			return err
		}

		out, err := s.apply(ctx, item)
		if err != nil {
			if errors.Is(err, ErrSkip) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.failed++
			err = fmt.Errorf("%s stage: %w", s.Name, err)
			log.Printf("error: %s\n", err.Error())
			if s.state != nil {
				s.state.SetError(err)
			}
			continue
		}
		s.processed++

		if s.Out == nil {
			continue
		}
		err = s.Out.Put(ctx, out)
		if err != nil {
			return err
		}
	}
}

// apply runs the transform, turning a panic into an error.
func (s *Stage[In, Out]) apply(ctx context.Context, item In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return s.Transform(ctx, item)
}

func (s *Stage[In, Out]) next(ctx context.Context, ticker *time.Ticker) (In, error) {
	var zero In
	if s.In != nil {
		return s.In.Get(ctx, s.PollTimeout)
	}
	if ticker == nil {
		return zero, nil
	}
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-ticker.C:
		return zero, nil
	}
}
