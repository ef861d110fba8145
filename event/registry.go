package event

import (
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/model"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Registry owns one CommonEvent per definition id and drives them once per
// simulation step, in ascending id order.
type Registry struct {
	ids    []int
	events map[int]*CommonEvent
}

func NewRegistry(ids []int, env Env) *Registry {
	r := &Registry{
		events: make(map[int]*CommonEvent, len(ids)),
	}
	for _, id := range ids {
		if _, ok := r.events[id]; ok {
			continue
		}
		r.events[id] = NewCommonEvent(id, env)
		r.ids = append(r.ids, id)
	}
	slices.Sort(r.ids)
	return r
}

func (r *Registry) Get(id int) (*CommonEvent, bool) {
	ce, ok := r.events[id]
	return ce, ok
}

func (r *Registry) Ids() []int {
	out := make([]int, len(r.ids))
	copy(out, r.ids)
	return out
}

func (r *Registry) Len() int {
	return len(r.ids)
}

func (r *Registry) Refresh() {
	for _, id := range r.ids {
		r.events[id].Refresh()
	}
}

func (r *Registry) Update() {
	for _, id := range r.ids {
		r.events[id].Update()
	}
}

// WaitingForeground lists the auto-start events that are eligible right now.
// Starting them is left to the caller.
func (r *Registry) WaitingForeground() []*CommonEvent {
	var out []*CommonEvent
	for _, id := range r.ids {
		if ce := r.events[id]; ce.IsWaitingForegroundExecution() {
			out = append(out, ce)
		}
	}
	return out
}

func (r *Registry) RunningBackground() int {
	running := 0
	for _, id := range r.ids {
		ce := r.events[id]
		if ce.GetTrigger() == model.TRIGGER_PARALLEL && ce.IsRunning() {
			running++
		}
	}
	return running
}

func (r *Registry) GetSaveData() []model.SaveCommonEvent {
	out := make([]model.SaveCommonEvent, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, model.SaveCommonEvent{
			Id:    id,
			State: r.events[id].GetSaveData(),
		})
	}
	return out
}

// SetSaveData restores every event. Events missing from data get an empty
// state, which still provisions parallel events.
func (r *Registry) SetSaveData(data []model.SaveCommonEvent) {
	states := make(map[int]model.SaveEventExecState, len(data))
	for _, entry := range data {
		if _, ok := r.events[entry.Id]; !ok {
			logger.Warn("ignoring save data for unknown common event", zap.Int("commonEventId", entry.Id))
			continue
		}
		states[entry.Id] = entry.State
	}
	for _, id := range r.ids {
		r.events[id].SetSaveData(states[id])
	}
}
