package interpreter

import (
	"fmt"
	"strings"

	"github.com/mohitkumar/commonevent/model"
)

const MAX_CALL_DEPTH = 100

var _ Command = new(noopCommand)

type noopCommand struct {
	baseCommand
}

func (c *noopCommand) Validate() error {
	if c.code == CODE_LABEL {
		if _, err := stringParam(c.params, "name"); err != nil {
			return fmt.Errorf("label: %w", err)
		}
	}
	return nil
}

func (c *noopCommand) execute(ctx *execContext) (result, error) {
	return resultContinue, nil
}

var _ Command = new(jumpCommand)

type jumpCommand struct {
	baseCommand
}

func (c *jumpCommand) Validate() error {
	if _, err := stringParam(c.params, "label"); err != nil {
		return fmt.Errorf("jump: %w", err)
	}
	return nil
}

func (c *jumpCommand) execute(ctx *execContext) (result, error) {
	label, err := stringParam(c.params, "label")
	if err != nil {
		return resultStop, err
	}
	return resultContinue, jumpTo(ctx.frame, label)
}

// jumpTo moves the frame to the command following the named label.
func jumpTo(frame *model.SaveEventExecFrame, label string) error {
	for i, ec := range frame.Commands {
		if !strings.EqualFold(ec.Code, CODE_LABEL) {
			continue
		}
		if name := stringParamOr(ec.Parameters, "name", ""); name == label {
			frame.CommandIndex = i + 1
			return nil
		}
	}
	return fmt.Errorf("label %s not found", label)
}

var _ Command = new(waitCommand)

type waitCommand struct {
	baseCommand
}

func (c *waitCommand) Validate() error {
	ticks, err := intParamOr(c.params, "ticks", 0)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if ticks < 0 {
		return fmt.Errorf("wait: ticks %d should not be negative", ticks)
	}
	return nil
}

func (c *waitCommand) execute(ctx *execContext) (result, error) {
	ticks, err := intParamOr(c.params, "ticks", 0)
	if err != nil {
		return resultStop, err
	}
	ctx.frame.WaitTicks = ticks
	return resultYield, nil
}

var _ Command = new(endCommand)

type endCommand struct {
	baseCommand
}

func (c *endCommand) Validate() error {
	return nil
}

func (c *endCommand) execute(ctx *execContext) (result, error) {
	ctx.interpreter.stack = nil
	return resultStop, nil
}

var _ Command = new(callCommand)

// checkedSource is implemented by definition sources that can report a
// missing id instead of panicking.
type checkedSource interface {
	Get(id int) (*model.CommonEventDefinition, bool)
}

type callCommand struct {
	baseCommand
}

func (c *callCommand) Validate() error {
	id, err := intParam(c.params, "eventId")
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}
	if id <= 0 {
		return fmt.Errorf("call: eventId %d should be positive", id)
	}
	return nil
}

func (c *callCommand) execute(ctx *execContext) (result, error) {
	id, err := intParam(c.params, "eventId")
	if err != nil {
		return resultStop, err
	}
	i := ctx.interpreter
	if len(i.stack) >= MAX_CALL_DEPTH {
		return resultStop, fmt.Errorf("call depth %d exceeded calling common event %d", MAX_CALL_DEPTH, id)
	}
	var def *model.CommonEventDefinition
	if src, ok := i.conf.Definitions.(checkedSource); ok {
		found, ok := src.Get(id)
		if !ok {
			return resultStop, fmt.Errorf("call to unknown common event %d", id)
		}
		def = found
	} else {
		def = i.conf.Definitions.Lookup(id)
	}
	if len(def.Commands) == 0 {
		return resultContinue, nil
	}
	i.push(id, def.Commands, 0)
	return resultContinue, nil
}
