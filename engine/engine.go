package engine

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/commonevent/event"
	"github.com/mohitkumar/commonevent/interpreter"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/metadata"
	"github.com/mohitkumar/commonevent/metrics"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/mohitkumar/commonevent/state"
	"github.com/mohitkumar/commonevent/util"
	"go.uber.org/zap"
)

type Config struct {
	MaxCommandsPerUpdate int
	ScriptTimeout        time.Duration
	// MaxSwitchId and MaxVariableId cap the state stores. Zero means the
	// state package maximum.
	MaxSwitchId   int
	MaxVariableId int
	OnMessage     func(eventId int, text string)
}

// EventStatus is a read-only view of one common event.
type EventStatus struct {
	Id               int           `json:"id"`
	Name             string        `json:"name"`
	Trigger          model.Trigger `json:"trigger"`
	SwitchFlag       bool          `json:"switchFlag"`
	SwitchId         int           `json:"switchId"`
	Commands         int           `json:"commands"`
	HasInterpreter   bool          `json:"hasInterpreter"`
	Running          bool          `json:"running"`
	WaitingExecution bool          `json:"waitingExecution"`
}

// Engine owns the game state the common events run against. Every method
// holds the engine lock, so a tick never interleaves with a save or an edit.
type Engine struct {
	mu        sync.Mutex
	conf      Config
	table     *metadata.Table
	switches  *state.Switches
	variables *state.Variables
	registry  *event.Registry
	saves     persistence.SaveStorage
	tick      int64
	wg        sync.WaitGroup
	worker    *util.TickWorker
}

func New(table *metadata.Table, saves persistence.SaveStorage, conf Config) *Engine {
	e := &Engine{
		conf:      conf,
		table:     table,
		switches:  state.NewSwitches(0, conf.MaxSwitchId),
		variables: state.NewVariables(0, conf.MaxVariableId),
		saves:     saves,
	}
	e.registry = e.newRegistry()
	e.registry.Refresh()
	return e
}

func (e *Engine) newRegistry() *event.Registry {
	env := event.Env{
		Definitions: e.table,
		Switches:    e.switches,
		NewInterpreter: interpreter.Factory(interpreter.Config{
			Definitions:          e.table,
			Switches:             e.switches,
			Variables:            e.variables,
			MaxCommandsPerUpdate: e.conf.MaxCommandsPerUpdate,
			ScriptTimeout:        e.conf.ScriptTimeout,
			OnMessage:            e.conf.OnMessage,
		}),
	}
	return event.NewRegistry(e.table.Ids(), env)
}

// Step advances every common event by one update.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()
	e.registry.Update()
	e.tick++
	metrics.RecordStep(time.Since(start), e.registry.RunningBackground())
}

// Start runs Step every interval until Stop.
func (e *Engine) Start(interval time.Duration) {
	e.mu.Lock()
	if e.worker == nil {
		e.worker = util.NewTickWorker("commonevent-engine", interval, e.Step, &e.wg)
	}
	worker := e.worker
	e.mu.Unlock()
	worker.Start()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	worker := e.worker
	e.mu.Unlock()
	if worker == nil {
		return
	}
	worker.Stop()
	e.wg.Wait()
}

func (e *Engine) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Snapshot captures the current state without persisting it.
func (e *Engine) Snapshot(slot string) model.SaveGame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(slot)
}

func (e *Engine) snapshot(slot string) model.SaveGame {
	return model.SaveGame{
		Id:           uuid.NewString(),
		Slot:         slot,
		Tick:         e.tick,
		SavedAt:      time.Now().UTC(),
		Switches:     e.switches.Values(),
		Variables:    e.variables.Values(),
		CommonEvents: e.registry.GetSaveData(),
	}
}

func (e *Engine) Save(slot string) (*model.SaveGame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	save := e.snapshot(slot)
	if err := e.saves.Save(slot, save); err != nil {
		return nil, err
	}
	logger.Info("game saved", zap.String("slot", slot), zap.String("id", save.Id), zap.Int64("tick", save.Tick))
	return &save, nil
}

func (e *Engine) Load(slot string) (*model.SaveGame, error) {
	save, err := e.saves.Load(slot)
	if err != nil {
		return nil, err
	}
	if err := e.Restore(*save); err != nil {
		return nil, err
	}
	logger.Info("game loaded", zap.String("slot", slot), zap.String("id", save.Id), zap.Int64("tick", save.Tick))
	return save, nil
}

// Restore replaces the game state with save. Events are rebuilt from the
// current table before their save data is applied. A save holding more
// switches or variables than the stores allow leaves the state untouched.
func (e *Engine) Restore(save model.SaveGame) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(save.Switches) > e.switches.Limit() {
		return fmt.Errorf("save %s holds %d switches, limit is %d", save.Id, len(save.Switches), e.switches.Limit())
	}
	if len(save.Variables) > e.variables.Limit() {
		return fmt.Errorf("save %s holds %d variables, limit is %d", save.Id, len(save.Variables), e.variables.Limit())
	}
	if err := e.switches.Restore(save.Switches); err != nil {
		return err
	}
	if err := e.variables.Restore(save.Variables); err != nil {
		return err
	}
	e.tick = save.Tick
	e.registry = e.newRegistry()
	e.registry.SetSaveData(save.CommonEvents)
	return nil
}

func (e *Engine) ListSaves() ([]string, error) {
	return e.saves.List()
}

func (e *Engine) DeleteSave(slot string) error {
	if err := e.saves.Delete(slot); err != nil {
		return err
	}
	logger.Info("save deleted", zap.String("slot", slot))
	return nil
}

// Reload swaps in a new definition table and carries running scripts over.
// Events no longer in the table are dropped.
func (e *Engine) Reload(table *metadata.Table) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data := e.registry.GetSaveData()
	e.table = table
	e.registry = e.newRegistry()
	e.registry.SetSaveData(data)
	logger.Info("common event table reloaded", zap.Int("count", table.Len()))
}

func (e *Engine) WaitingForeground() []EventStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []EventStatus
	for _, ce := range e.registry.WaitingForeground() {
		out = append(out, status(ce))
	}
	return out
}

func (e *Engine) Events() []EventStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]EventStatus, 0, e.registry.Len())
	for _, id := range e.registry.Ids() {
		ce, _ := e.registry.Get(id)
		out = append(out, status(ce))
	}
	return out
}

func (e *Engine) Event(id int) (*EventStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ce, err := e.get(id)
	if err != nil {
		return nil, err
	}
	s := status(ce)
	return &s, nil
}

func (e *Engine) EventSaveData(id int) (*model.SaveEventExecState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ce, err := e.get(id)
	if err != nil {
		return nil, err
	}
	data := ce.GetSaveData()
	return &data, nil
}

// SetCommands replaces the command list of an event. The list is validated
// against the current table first.
func (e *Engine) SetCommands(id int, commands []model.EventCommand) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ce, err := e.get(id)
	if err != nil {
		return err
	}
	if err := metadata.ValidateCommands(id, commands, e.table.Ids()); err != nil {
		return err
	}
	ce.SetList(commands)
	ce.Refresh()
	return nil
}

func (e *Engine) Switch(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.switches.Get(id)
}

func (e *Engine) SetSwitch(id int, value bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.switches.Check(id); err != nil {
		return err
	}
	e.switches.Set(id, value)
	e.registry.Refresh()
	return nil
}

func (e *Engine) Variable(id int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.variables.Get(id)
}

func (e *Engine) SetVariable(id int, value int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.variables.Check(id); err != nil {
		return err
	}
	e.variables.Set(id, value)
	return nil
}

func (e *Engine) get(id int) (*event.CommonEvent, error) {
	ce, ok := e.registry.Get(id)
	if !ok {
		return nil, persistence.NotFoundError{Kind: "common event", Key: strconv.Itoa(id)}
	}
	return ce, nil
}

func status(ce *event.CommonEvent) EventStatus {
	return EventStatus{
		Id:               ce.GetIndex(),
		Name:             ce.GetName(),
		Trigger:          ce.GetTrigger(),
		SwitchFlag:       ce.GetSwitchFlag(),
		SwitchId:         ce.GetSwitchId(),
		Commands:         len(ce.GetList()),
		HasInterpreter:   ce.HasInterpreter(),
		Running:          ce.IsRunning(),
		WaitingExecution: ce.IsWaitingExecution(ce.GetTrigger()),
	}
}
