package vehicle

import (
	"fmt"
	"log"

	"github.com/Speshl/gorrc_pilot/internal/models"
)

// Shifter walks the forward gears in catalog order. Reverse is only reachable
// through Set or ToggleReverse. Not safe for concurrent use.
type Shifter struct {
	gears       *GearBox
	forward     []string
	current     string
	lastForward string
}

func NewShifter(gears *GearBox, start string) (*Shifter, error) {
	forward := gears.ForwardNames()
	if len(forward) == 0 {
		return nil, fmt.Errorf("%w: no forward gears configured", models.ErrConfiguration)
	}

	s := &Shifter{
		gears:       gears,
		forward:     forward,
		current:     forward[0],
		lastForward: forward[0],
	}
	err := s.Set(start)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shifter) Current() string {
	return s.current
}

func (s *Shifter) forwardIndex() int {
	for i, name := range s.forward {
		if name == s.current {
			return i
		}
	}
	return -1
}

// Up returns the new gear and whether a shift happened.
func (s *Shifter) Up() (string, bool) {
	i := s.forwardIndex()
	if i < 0 {
		// out of reverse into the lowest forward gear
		return s.shift(s.forward[0])
	}
	if i >= len(s.forward)-1 {
		log.Printf("already in top gear: %s\n", s.current)
		return s.current, false
	}
	return s.shift(s.forward[i+1])
}

func (s *Shifter) Down() (string, bool) {
	i := s.forwardIndex()
	if i <= 0 {
		log.Printf("already in lowest gear: %s\n", s.current)
		return s.current, false
	}
	return s.shift(s.forward[i-1])
}

func (s *Shifter) Set(name string) error {
	_, err := s.gears.Lookup(name)
	if err != nil {
		return err
	}
	s.shift(name)
	return nil
}

// ToggleReverse flips between reverse and the last forward gear used.
func (s *Shifter) ToggleReverse() (string, bool) {
	reverse, ok := s.gears.ReverseName()
	if !ok {
		log.Println("no reverse gear configured")
		return s.current, false
	}
	if s.current == reverse {
		return s.shift(s.lastForward)
	}
	return s.shift(reverse)
}

func (s *Shifter) shift(name string) (string, bool) {
	if name == s.current {
		return s.current, false
	}
	s.current = name
	gear, err := s.gears.Lookup(name)
	if err == nil && gear.Direction == Forward {
		s.lastForward = name
	}
	return s.current, true
}
