package event

import "github.com/mohitkumar/commonevent/model"

// Owner is the non-owning handle an interpreter receives on Setup.
type Owner interface {
	GetIndex() int
	GetList() []model.EventCommand
}

// Interpreter executes the commands of one event over many ticks.
type Interpreter interface {
	IsRunning() bool
	// Setup resets the interpreter to run the owner's commands from startPosition.
	Setup(owner Owner, startPosition int)
	// Update advances the interpreter by at most one step-unit.
	Update()
	SetupFromSave(stack []model.SaveEventExecFrame)
	GetSaveData() []model.SaveEventExecFrame
}

// DefinitionSource resolves event ids. Lookup is trusted to succeed for every
// id an event was constructed with.
type DefinitionSource interface {
	Lookup(id int) *model.CommonEventDefinition
}

type SwitchReader interface {
	Get(id int) bool
}

// Env carries the collaborators shared by every event of a registry.
type Env struct {
	Definitions    DefinitionSource
	Switches       SwitchReader
	NewInterpreter func() Interpreter
}
