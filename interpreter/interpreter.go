package interpreter

import (
	"time"

	"github.com/mohitkumar/commonevent/analytics"
	"github.com/mohitkumar/commonevent/event"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/metrics"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/state"
	"go.uber.org/zap"
)

const DEFAULT_MAX_COMMANDS_PER_UPDATE = 10000
const DEFAULT_SCRIPT_TIMEOUT = time.Second

type Config struct {
	Definitions          event.DefinitionSource
	Switches             *state.Switches
	Variables            *state.Variables
	MaxCommandsPerUpdate int
	// ScriptTimeout bounds a single script command. A script running longer
	// is interrupted and fails its command.
	ScriptTimeout time.Duration
	// OnMessage, when set, receives the resolved text of every message command.
	OnMessage func(eventId int, text string)
}

var _ event.Interpreter = new(Interpreter)

// Interpreter runs event command lists as a stack of frames. A call command
// pushes a frame; a frame is popped when its last command has executed.
type Interpreter struct {
	conf        Config
	stack       []model.SaveEventExecFrame
	nextFrameId int
}

func New(conf Config) *Interpreter {
	if conf.MaxCommandsPerUpdate <= 0 {
		conf.MaxCommandsPerUpdate = DEFAULT_MAX_COMMANDS_PER_UPDATE
	}
	if conf.ScriptTimeout <= 0 {
		conf.ScriptTimeout = DEFAULT_SCRIPT_TIMEOUT
	}
	return &Interpreter{conf: conf, nextFrameId: 1}
}

// Factory returns a constructor suitable for event.Env.
func Factory(conf Config) func() event.Interpreter {
	return func() event.Interpreter {
		return New(conf)
	}
}

func (i *Interpreter) IsRunning() bool {
	return len(i.stack) > 0
}

func (i *Interpreter) Setup(owner event.Owner, startPosition int) {
	i.stack = nil
	i.push(owner.GetIndex(), owner.GetList(), startPosition)
}

func (i *Interpreter) push(eventId int, commands []model.EventCommand, start int) {
	if start < 0 {
		start = 0
	}
	list := make([]model.EventCommand, len(commands))
	copy(list, commands)
	i.stack = append(i.stack, model.SaveEventExecFrame{
		ID:           i.nextFrameId,
		EventID:      eventId,
		CommandIndex: start,
		Commands:     list,
	})
	i.nextFrameId++
}

func (i *Interpreter) SetupFromSave(stack []model.SaveEventExecFrame) {
	i.stack = make([]model.SaveEventExecFrame, 0, len(stack))
	maxId := 0
	for _, frame := range stack {
		list := make([]model.EventCommand, len(frame.Commands))
		copy(list, frame.Commands)
		frame.Commands = list
		i.stack = append(i.stack, frame)
		if frame.ID > maxId {
			maxId = frame.ID
		}
	}
	i.nextFrameId = maxId + 1
}

func (i *Interpreter) GetSaveData() []model.SaveEventExecFrame {
	if len(i.stack) == 0 {
		return nil
	}
	out := make([]model.SaveEventExecFrame, len(i.stack))
	for idx, frame := range i.stack {
		list := make([]model.EventCommand, len(frame.Commands))
		copy(list, frame.Commands)
		frame.Commands = list
		out[idx] = frame
	}
	return out
}

// Update runs commands until one of them yields, the stack empties or the
// per update command budget is spent.
func (i *Interpreter) Update() {
	executed := 0
	defer func() {
		metrics.RecordCommands(executed)
	}()
	for len(i.stack) > 0 {
		frame := &i.stack[len(i.stack)-1]
		if frame.WaitTicks > 0 {
			frame.WaitTicks--
			return
		}
		if frame.CommandIndex >= len(frame.Commands) {
			i.stack = i.stack[:len(i.stack)-1]
			continue
		}
		if executed >= i.conf.MaxCommandsPerUpdate {
			logger.Warn("command budget exhausted, yielding",
				zap.Int("commonEventId", frame.EventID),
				zap.Int("budget", i.conf.MaxCommandsPerUpdate))
			return
		}
		eventId, frameId, index := frame.EventID, frame.ID, frame.CommandIndex
		ec := frame.Commands[index]
		frame.CommandIndex++
		executed++

		res, err := i.execute(ec, frame)
		if err != nil {
			logger.Error("error executing command",
				zap.Int("commonEventId", eventId),
				zap.Int("frame", frameId),
				zap.String("code", ec.Code),
				zap.Int("index", index),
				zap.Error(err))
			analytics.RecordCommandFailure(eventId, frameId, ec.Code, index, err.Error())
			i.stack = nil
			return
		}
		analytics.RecordCommandSuccess(eventId, frameId, ec.Code, index)
		if res != resultContinue {
			return
		}
	}
}

func (i *Interpreter) execute(ec model.EventCommand, frame *model.SaveEventExecFrame) (result, error) {
	cmd, err := NewCommand(ec)
	if err != nil {
		return resultStop, err
	}
	return cmd.execute(&execContext{interpreter: i, frame: frame})
}

// data is the document jsonpath expressions and scripts see. Index 0 of
// switches and variables is unused so that $.switches[7] is switch 7.
func (i *Interpreter) data(eventId int) map[string]any {
	switches := []any{false}
	if i.conf.Switches != nil {
		for _, v := range i.conf.Switches.Values() {
			switches = append(switches, v)
		}
	}
	variables := []any{0}
	if i.conf.Variables != nil {
		for _, v := range i.conf.Variables.Values() {
			variables = append(variables, v)
		}
	}
	return map[string]any{
		"event":     eventId,
		"switches":  switches,
		"variables": variables,
	}
}
