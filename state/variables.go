package state

import "fmt"

// MAX_VARIABLE_ID is the highest variable id any store accepts.
const MAX_VARIABLE_ID = 100000

// Variables is the integer variable store, shaped like Switches.
type Variables struct {
	data  []int
	limit int
}

func NewVariables(size int, limit int) *Variables {
	limit = clampLimit(limit, MAX_VARIABLE_ID)
	if size < 0 {
		size = 0
	}
	if size > limit {
		size = limit
	}
	return &Variables{data: make([]int, size), limit: limit}
}

func (v *Variables) Limit() int {
	return v.limit
}

func (v *Variables) Check(id int) error {
	return checkId("variable", id, v.limit)
}

func (v *Variables) Get(id int) int {
	if id <= 0 || id > len(v.data) {
		return 0
	}
	return v.data[id-1]
}

func (v *Variables) Set(id int, value int) {
	if v.Check(id) != nil {
		return
	}
	if id > len(v.data) {
		v.data = append(v.data, make([]int, id-len(v.data))...)
	}
	v.data[id-1] = value
}

func (v *Variables) Len() int {
	return len(v.data)
}

func (v *Variables) Values() []int {
	out := make([]int, len(v.data))
	copy(out, v.data)
	return out
}

func (v *Variables) Restore(values []int) error {
	if len(values) > v.limit {
		return fmt.Errorf("saved variables %d exceed limit %d", len(values), v.limit)
	}
	v.data = make([]int, len(values))
	copy(v.data, values)
	return nil
}
