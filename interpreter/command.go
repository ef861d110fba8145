package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohitkumar/commonevent/model"
)

const (
	CODE_COMMENT  = "comment"
	CODE_LABEL    = "label"
	CODE_JUMP     = "jump"
	CODE_WAIT     = "wait"
	CODE_END      = "end"
	CODE_CALL     = "call"
	CODE_SWITCH   = "switch"
	CODE_VARIABLE = "variable"
	CODE_BRANCH   = "branch"
	CODE_SCRIPT   = "script"
	CODE_MESSAGE  = "message"
)

var VALID_COMMANDS = []string{
	CODE_COMMENT, CODE_LABEL, CODE_JUMP, CODE_WAIT, CODE_END, CODE_CALL,
	CODE_SWITCH, CODE_VARIABLE, CODE_BRANCH, CODE_SCRIPT, CODE_MESSAGE,
}

type result int

const (
	resultContinue result = iota
	resultYield
	resultStop
)

type Command interface {
	GetCode() string
	Validate() error
	execute(ctx *execContext) (result, error)
}

type execContext struct {
	interpreter *Interpreter
	frame       *model.SaveEventExecFrame
}

type baseCommand struct {
	code   string
	params map[string]any
}

func (bc *baseCommand) GetCode() string {
	return bc.code
}

// NewCommand builds the executable form of ec.
func NewCommand(ec model.EventCommand) (Command, error) {
	base := baseCommand{code: strings.ToLower(ec.Code), params: ec.Parameters}
	switch base.code {
	case CODE_COMMENT, CODE_LABEL:
		return &noopCommand{baseCommand: base}, nil
	case CODE_JUMP:
		return &jumpCommand{baseCommand: base}, nil
	case CODE_WAIT:
		return &waitCommand{baseCommand: base}, nil
	case CODE_END:
		return &endCommand{baseCommand: base}, nil
	case CODE_CALL:
		return &callCommand{baseCommand: base}, nil
	case CODE_SWITCH:
		return &switchCommand{baseCommand: base}, nil
	case CODE_VARIABLE:
		return &variableCommand{baseCommand: base}, nil
	case CODE_BRANCH:
		return &branchCommand{baseCommand: base}, nil
	case CODE_SCRIPT:
		return &scriptCommand{baseCommand: base}, nil
	case CODE_MESSAGE:
		return &messageCommand{baseCommand: base}, nil
	}
	return nil, fmt.Errorf("command %q not supported", ec.Code)
}

// ValidateCommand checks that ec is known and well formed.
func ValidateCommand(ec model.EventCommand) error {
	cmd, err := NewCommand(ec)
	if err != nil {
		return err
	}
	return cmd.Validate()
}

// CallTarget returns the event id a call command refers to.
func CallTarget(ec model.EventCommand) (int, bool) {
	if !strings.EqualFold(ec.Code, CODE_CALL) {
		return 0, false
	}
	id, err := intParam(ec.Parameters, "eventId")
	if err != nil {
		return 0, false
	}
	return id, true
}

func intParam(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("parameter %s is required", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		i, ok := floatToInt(n)
		if !ok {
			return 0, fmt.Errorf("parameter %s should be an integer", key)
		}
		return i, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("parameter %s should be an integer", key)
		}
		return i, nil
	}
	return 0, fmt.Errorf("parameter %s should be an integer", key)
}

// floatToInt converts n when it is integral and fits in an int64.
func floatToInt(n float64) (int, bool) {
	if math.IsNaN(n) || n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, false
	}
	return int(n), true
}

func intParamOr(params map[string]any, key string, def int) (int, error) {
	if _, ok := params[key]; !ok {
		return def, nil
	}
	return intParam(params, key)
}

func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("parameter %s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s should be a string", key)
	}
	return s, nil
}

func stringParamOr(params map[string]any, key string, def string) string {
	s, err := stringParam(params, key)
	if err != nil {
		return def
	}
	return s
}
