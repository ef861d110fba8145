package interpreter

import (
	"fmt"
	"strings"

	"github.com/mohitkumar/commonevent/state"
	"github.com/mohitkumar/commonevent/util"
	"github.com/oliveagle/jsonpath"
)

var _ Command = new(switchCommand)

type switchCommand struct {
	baseCommand
}

func (c *switchCommand) Validate() error {
	first, last, err := c.bounds()
	if err != nil {
		return fmt.Errorf("switch: %w", err)
	}
	if first <= 0 || last < first {
		return fmt.Errorf("switch: invalid range %d..%d", first, last)
	}
	if last > state.MAX_SWITCH_ID {
		return fmt.Errorf("switch: id %d exceeds limit %d", last, state.MAX_SWITCH_ID)
	}
	switch c.operation() {
	case "on", "off", "toggle":
		return nil
	}
	return fmt.Errorf("switch: unknown operation %s", c.operation())
}

func (c *switchCommand) bounds() (int, int, error) {
	first, err := intParam(c.params, "id")
	if err != nil {
		return 0, 0, err
	}
	last, err := intParamOr(c.params, "end", first)
	if err != nil {
		return 0, 0, err
	}
	return first, last, nil
}

func (c *switchCommand) operation() string {
	return strings.ToLower(stringParamOr(c.params, "op", "on"))
}

func (c *switchCommand) execute(ctx *execContext) (result, error) {
	if err := c.Validate(); err != nil {
		return resultStop, err
	}
	first, last, _ := c.bounds()
	switches := ctx.interpreter.conf.Switches
	switch c.operation() {
	case "on", "off":
		if err := switches.SetRange(first, last, c.operation() == "on"); err != nil {
			return resultStop, err
		}
	case "toggle":
		if err := switches.Check(last); err != nil {
			return resultStop, err
		}
		for id := first; id <= last; id++ {
			switches.Toggle(id)
		}
	}
	return resultContinue, nil
}

var _ Command = new(variableCommand)

type variableCommand struct {
	baseCommand
}

func (c *variableCommand) Validate() error {
	id, err := intParam(c.params, "id")
	if err != nil {
		return fmt.Errorf("variable: %w", err)
	}
	if id <= 0 {
		return fmt.Errorf("variable: id %d should be positive", id)
	}
	if id > state.MAX_VARIABLE_ID {
		return fmt.Errorf("variable: id %d exceeds limit %d", id, state.MAX_VARIABLE_ID)
	}
	if _, err := intParam(c.params, "value"); err != nil {
		return fmt.Errorf("variable: %w", err)
	}
	switch c.operation() {
	case "set", "add", "sub", "mul", "div", "mod":
		return nil
	}
	return fmt.Errorf("variable: unknown operation %s", c.operation())
}

func (c *variableCommand) operation() string {
	return strings.ToLower(stringParamOr(c.params, "op", "set"))
}

func (c *variableCommand) execute(ctx *execContext) (result, error) {
	if err := c.Validate(); err != nil {
		return resultStop, err
	}
	id, _ := intParam(c.params, "id")
	value, _ := intParam(c.params, "value")
	variables := ctx.interpreter.conf.Variables
	if err := variables.Check(id); err != nil {
		return resultStop, err
	}
	current := variables.Get(id)
	switch c.operation() {
	case "set":
		current = value
	case "add":
		current += value
	case "sub":
		current -= value
	case "mul":
		current *= value
	case "div", "mod":
		if value == 0 {
			return resultStop, fmt.Errorf("variable %d: division by zero", id)
		}
		if c.operation() == "div" {
			current /= value
		} else {
			current %= value
		}
	}
	variables.Set(id, current)
	return resultContinue, nil
}

var _ Command = new(branchCommand)

// branchCommand continues when the jsonpath expression equals the expected
// value and jumps to the else label otherwise.
type branchCommand struct {
	baseCommand
}

func (c *branchCommand) Validate() error {
	expression, err := stringParam(c.params, "expression")
	if err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	if !strings.HasPrefix(expression, "{") || !strings.HasSuffix(expression, "}") {
		return fmt.Errorf("branch: expression should be enclosed in {}")
	}
	if _, err := jsonpath.Compile(util.TrimBraces(expression)); err != nil {
		return fmt.Errorf("branch: expression should be a valid jsonpath expression")
	}
	if _, ok := c.params["equals"]; !ok {
		return fmt.Errorf("branch: parameter equals is required")
	}
	if _, err := stringParam(c.params, "else"); err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	return nil
}

func (c *branchCommand) execute(ctx *execContext) (result, error) {
	if err := c.Validate(); err != nil {
		return resultStop, err
	}
	expression, _ := stringParam(c.params, "expression")
	elseLabel, _ := stringParam(c.params, "else")
	value, err := jsonpath.JsonPathLookup(ctx.interpreter.data(ctx.frame.EventID), util.TrimBraces(expression))
	if err != nil {
		return resultStop, err
	}
	if fmt.Sprintf("%v", value) == fmt.Sprintf("%v", c.params["equals"]) {
		return resultContinue, nil
	}
	return resultContinue, jumpTo(ctx.frame, elseLabel)
}
