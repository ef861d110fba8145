package model

import "time"

// SaveEventExecFrame is one call frame of a suspended script.
type SaveEventExecFrame struct {
	ID           int            `json:"id"`
	EventID      int            `json:"eventId"`
	CommandIndex int            `json:"commandIndex"`
	Commands     []EventCommand `json:"commands"`
	WaitTicks    int            `json:"waitTicks"`
}

// SaveEventExecState is the persisted execution state of one event. An empty
// stack means nothing is executing.
type SaveEventExecState struct {
	Stack []SaveEventExecFrame `json:"stack"`
}

type SaveCommonEvent struct {
	Id    int                `json:"id"`
	State SaveEventExecState `json:"state"`
}

type SaveGame struct {
	Id           string            `json:"id"`
	Slot         string            `json:"slot"`
	Tick         int64             `json:"tick"`
	SavedAt      time.Time         `json:"savedAt"`
	Switches     []bool            `json:"switches"`
	Variables    []int             `json:"variables"`
	CommonEvents []SaveCommonEvent `json:"commonEvents"`
}
