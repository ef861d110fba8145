package event

import (
	"github.com/mohitkumar/commonevent/model"
)

var _ Owner = new(CommonEvent)

type CommonEvent struct {
	eventId     int
	env         Env
	interpreter Interpreter
}

func NewCommonEvent(eventId int, env Env) *CommonEvent {
	return &CommonEvent{
		eventId: eventId,
		env:     env,
	}
}

// SetSaveData restores the execution state. A non-empty stack replaces any held
// interpreter; an empty one leaves it untouched. Refresh always runs afterwards.
func (ce *CommonEvent) SetSaveData(data model.SaveEventExecState) {
	if len(data.Stack) != 0 {
		interpreter := ce.env.NewInterpreter()
		interpreter.SetupFromSave(data.Stack)
		ce.interpreter = interpreter
	}
	ce.Refresh()
}

// Refresh provisions an idle interpreter for parallel events.
func (ce *CommonEvent) Refresh() {
	if ce.GetTrigger() == model.TRIGGER_PARALLEL && ce.interpreter == nil {
		ce.interpreter = ce.env.NewInterpreter()
	}
}

func (ce *CommonEvent) Update() {
	if ce.interpreter == nil || !ce.IsWaitingBackgroundExecution() {
		return
	}
	if !ce.interpreter.IsRunning() {
		ce.interpreter.Setup(ce, 0)
	}
	ce.interpreter.Update()
}

func (ce *CommonEvent) GetIndex() int {
	return ce.eventId
}

func (ce *CommonEvent) GetName() string {
	return ce.definition().Name
}

func (ce *CommonEvent) GetSwitchFlag() bool {
	return ce.definition().SwitchFlag
}

func (ce *CommonEvent) GetSwitchId() int {
	return ce.definition().SwitchId
}

func (ce *CommonEvent) GetTrigger() model.Trigger {
	return ce.definition().Trigger
}

// GetList returns the live command list of the definition. Elements may be
// edited in place; use SetList to change its length.
func (ce *CommonEvent) GetList() []model.EventCommand {
	return ce.definition().Commands
}

func (ce *CommonEvent) SetList(commands []model.EventCommand) {
	ce.definition().Commands = commands
}

func (ce *CommonEvent) GetSaveData() model.SaveEventExecState {
	var data model.SaveEventExecState
	if ce.interpreter != nil {
		data.Stack = ce.interpreter.GetSaveData()
	}
	return data
}

func (ce *CommonEvent) HasInterpreter() bool {
	return ce.interpreter != nil
}

func (ce *CommonEvent) IsRunning() bool {
	return ce.interpreter != nil && ce.interpreter.IsRunning()
}

func (ce *CommonEvent) IsWaitingExecution(trigger model.Trigger) bool {
	def := ce.definition()
	return def.Trigger == trigger &&
		(!def.SwitchFlag || ce.env.Switches.Get(def.SwitchId)) &&
		len(def.Commands) != 0
}

func (ce *CommonEvent) IsWaitingForegroundExecution() bool {
	return ce.IsWaitingExecution(model.TRIGGER_AUTO_START)
}

func (ce *CommonEvent) IsWaitingBackgroundExecution() bool {
	return ce.IsWaitingExecution(model.TRIGGER_PARALLEL)
}

func (ce *CommonEvent) definition() *model.CommonEventDefinition {
	return ce.env.Definitions.Lookup(ce.eventId)
}
