package model

type EventCommand struct {
	Code       string         `json:"code" yaml:"code"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type CommonEventDefinition struct {
	Id         int            `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Trigger    Trigger        `json:"trigger" yaml:"trigger"`
	SwitchFlag bool           `json:"switchFlag" yaml:"switchFlag"`
	SwitchId   int            `json:"switchId" yaml:"switchId"`
	Commands   []EventCommand `json:"commands" yaml:"commands"`
}

type Database struct {
	CommonEvents []CommonEventDefinition `json:"commonEvents" yaml:"commonEvents"`
}
