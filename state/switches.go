package state

import "fmt"

// MAX_SWITCH_ID is the highest switch id any store accepts.
const MAX_SWITCH_ID = 100000

// Switches is the boolean switch store. Ids start at 1; reading an id that was
// never written yields false. Writes above the store limit are rejected.
type Switches struct {
	data  []bool
	limit int
}

// NewSwitches creates a store holding size switches. A limit outside
// 1..MAX_SWITCH_ID means MAX_SWITCH_ID.
func NewSwitches(size int, limit int) *Switches {
	limit = clampLimit(limit, MAX_SWITCH_ID)
	if size < 0 {
		size = 0
	}
	if size > limit {
		size = limit
	}
	return &Switches{data: make([]bool, size), limit: limit}
}

func (s *Switches) Limit() int {
	return s.limit
}

// Check reports whether id can be written.
func (s *Switches) Check(id int) error {
	return checkId("switch", id, s.limit)
}

func (s *Switches) Get(id int) bool {
	if id <= 0 || id > len(s.data) {
		return false
	}
	return s.data[id-1]
}

// Set writes a switch. Ids failing Check are ignored.
func (s *Switches) Set(id int, value bool) {
	if s.Check(id) != nil {
		return
	}
	s.grow(id)
	s.data[id-1] = value
}

// SetRange sets every switch in [first, last].
func (s *Switches) SetRange(first int, last int, value bool) error {
	if err := s.Check(first); err != nil {
		return err
	}
	if err := s.Check(last); err != nil {
		return err
	}
	for id := first; id <= last; id++ {
		s.Set(id, value)
	}
	return nil
}

func (s *Switches) Toggle(id int) {
	s.Set(id, !s.Get(id))
}

func (s *Switches) Len() int {
	return len(s.data)
}

// Values returns a copy of the store, index 0 holding switch 1.
func (s *Switches) Values() []bool {
	out := make([]bool, len(s.data))
	copy(out, s.data)
	return out
}

func (s *Switches) Restore(values []bool) error {
	if len(values) > s.limit {
		return fmt.Errorf("saved switches %d exceed limit %d", len(values), s.limit)
	}
	s.data = make([]bool, len(values))
	copy(s.data, values)
	return nil
}

func (s *Switches) grow(id int) {
	if id > len(s.data) {
		s.data = append(s.data, make([]bool, id-len(s.data))...)
	}
}

func clampLimit(limit int, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

func checkId(kind string, id int, limit int) error {
	if id <= 0 {
		return fmt.Errorf("%s id %d should be positive", kind, id)
	}
	if id > limit {
		return fmt.Errorf("%s id %d exceeds limit %d", kind, id, limit)
	}
	return nil
}
