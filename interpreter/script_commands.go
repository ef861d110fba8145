package interpreter

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/util"
	"go.uber.org/zap"
)

var _ Command = new(scriptCommand)

// scriptCommand runs javascript with `$` bound to the game data. Switches and
// variables changed through `$` are written back.
type scriptCommand struct {
	baseCommand
}

func (c *scriptCommand) Validate() error {
	source, err := stringParam(c.params, "source")
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	if len(source) == 0 {
		return fmt.Errorf("script: source can not be empty")
	}
	if _, err := goja.Compile("script", source, false); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func (c *scriptCommand) execute(ctx *execContext) (result, error) {
	source, err := stringParam(c.params, "source")
	if err != nil {
		return resultStop, err
	}
	i := ctx.interpreter
	data, err := json.Marshal(i.data(ctx.frame.EventID))
	if err != nil {
		return resultStop, err
	}
	vm := goja.New()
	timer := time.AfterFunc(i.conf.ScriptTimeout, func() {
		vm.Interrupt("script timeout")
	})
	defer timer.Stop()
	if _, err := vm.RunString(fmt.Sprintf("var $ = %s;\n%s", data, source)); err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return resultStop, fmt.Errorf("script interrupted after %s", i.conf.ScriptTimeout)
		}
		return resultStop, fmt.Errorf("error executing javascript %w", err)
	}
	// reject oversized arrays before Export materializes them
	for _, field := range []struct {
		name  string
		limit int
	}{
		{"switches", i.conf.Switches.Limit()},
		{"variables", i.conf.Variables.Limit()},
	} {
		length, err := vm.RunString(fmt.Sprintf("Array.isArray($.%[1]s) ? $.%[1]s.length : 0", field.name))
		if err != nil {
			return resultStop, fmt.Errorf("error executing javascript %w", err)
		}
		if length.ToInteger() > int64(field.limit)+1 {
			return resultStop, fmt.Errorf("script wrote %s past limit %d", field.name, field.limit)
		}
	}
	val, err := vm.RunString("$")
	if err != nil {
		return resultStop, fmt.Errorf("error executing javascript %w", err)
	}
	res, err := json.Marshal(val.Export())
	if err != nil {
		return resultStop, err
	}
	var output struct {
		Switches  []any `json:"switches"`
		Variables []any `json:"variables"`
	}
	if err := json.Unmarshal(res, &output); err != nil {
		return resultStop, err
	}
	variables := make(map[int]int)
	for id := 1; id < len(output.Variables); id++ {
		n, ok := output.Variables[id].(float64)
		if !ok {
			continue
		}
		value, ok := floatToInt(n)
		if !ok {
			return resultStop, fmt.Errorf("script set variable %d to %v, not an integer", id, n)
		}
		variables[id] = value
	}
	for id := 1; id < len(output.Switches); id++ {
		if on, ok := output.Switches[id].(bool); ok && on != i.conf.Switches.Get(id) {
			i.conf.Switches.Set(id, on)
		}
	}
	for id, value := range variables {
		if value != i.conf.Variables.Get(id) {
			i.conf.Variables.Set(id, value)
		}
	}
	return resultContinue, nil
}

var _ Command = new(messageCommand)

type messageCommand struct {
	baseCommand
}

func (c *messageCommand) Validate() error {
	if _, err := stringParam(c.params, "text"); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	return nil
}

func (c *messageCommand) execute(ctx *execContext) (result, error) {
	text, err := stringParam(c.params, "text")
	if err != nil {
		return resultStop, err
	}
	text = util.ResolveText(ctx.interpreter.data(ctx.frame.EventID), text)
	logger.Info("message", zap.Int("commonEventId", ctx.frame.EventID), zap.String("text", text))
	if ctx.interpreter.conf.OnMessage != nil {
		ctx.interpreter.conf.OnMessage(ctx.frame.EventID, text)
	}
	return resultContinue, nil
}
