package state

import (
	"math"
	"sync"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/google/uuid"
)

// Snapshot is a full copy of the shared vehicle state.
type Snapshot struct {
	SessionID string

	Gear           string
	Mode           string
	Trim           float64
	DepthThreshold float64
	Recording      bool
	RecordingID    string

	MinDistance float64
	Braking     bool

	MotorValue    int
	SteeringValue int

	LastError string
	UpdatedAt time.Time
}

// Patch is a partial update. Nil fields leave the stored value untouched.
type Patch struct {
	Gear           *string
	Mode           *string
	Trim           *float64
	DepthThreshold *float64
	Recording      *bool
	RecordingID    *string

	MinDistance *float64
	Braking     *bool

	MotorValue    *int
	SteeringValue *int

	LastError *string
}

// Store is the cross-stage observational state. Any stage may write any
// field, last writer wins per field.
type Store struct {
	lock sync.RWMutex
	snap Snapshot
}

func Ptr[T any](v T) *T {
	return &v
}

func DefaultSnapshot(cfg config.Config) Snapshot {
	return Snapshot{
		SessionID:      uuid.NewString(),
		Gear:           cfg.VehicleCfg.StartGear,
		Mode:           cfg.PipelineCfg.StartMode,
		Trim:           0.0,
		DepthThreshold: cfg.AutopilotCfg.DepthThreshold,
		Recording:      false,
		MinDistance:    math.Inf(1),
		Braking:        false,
		MotorValue:     models.NeutralValue,
		SteeringValue:  models.NeutralValue,
		LastError:      "",
	}
}

func NewStore(defaults Snapshot) *Store {
	if defaults.UpdatedAt.IsZero() {
		defaults.UpdatedAt = time.Now()
	}
	return &Store{
		snap: defaults,
	}
}

func (s *Store) Update(p Patch) {
	s.lock.Lock()
	defer s.lock.Unlock()

	changed := false
	if p.Gear != nil {
		s.snap.Gear = *p.Gear
		changed = true
	}
	if p.Mode != nil {
		s.snap.Mode = *p.Mode
		changed = true
	}
	if p.Trim != nil {
		s.snap.Trim = *p.Trim
		changed = true
	}
	if p.DepthThreshold != nil {
		s.snap.DepthThreshold = *p.DepthThreshold
		changed = true
	}
	if p.Recording != nil {
		s.snap.Recording = *p.Recording
		changed = true
	}
	if p.RecordingID != nil {
		s.snap.RecordingID = *p.RecordingID
		changed = true
	}
	if p.MinDistance != nil {
		s.snap.MinDistance = *p.MinDistance
		changed = true
	}
	if p.Braking != nil {
		s.snap.Braking = *p.Braking
		changed = true
	}
	if p.MotorValue != nil {
		s.snap.MotorValue = *p.MotorValue
		changed = true
	}
	if p.SteeringValue != nil {
		s.snap.SteeringValue = *p.SteeringValue
		changed = true
	}
	if p.LastError != nil {
		s.snap.LastError = *p.LastError
		changed = true
	}

	if changed {
		s.snap.UpdatedAt = time.Now()
	}
}

func (s *Store) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snap
}

// SetError records err as the most recent failure. A nil err is ignored.
func (s *Store) SetError(err error) {
	if err == nil {
		return
	}
	s.Update(Patch{LastError: Ptr(err.Error())})
}
