package metadata

import (
	"fmt"

	"github.com/mohitkumar/commonevent/event"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/util"
)

var _ event.DefinitionSource = new(Table)

// Table is the in-memory common event database. The id set is fixed; command
// lists may be replaced through CommonEvent.SetList.
type Table struct {
	defs map[int]*model.CommonEventDefinition
	ids  []int
}

func NewTable(defs []model.CommonEventDefinition) *Table {
	t := &Table{defs: make(map[int]*model.CommonEventDefinition, len(defs))}
	for i := range defs {
		def := defs[i]
		def.Commands = append([]model.EventCommand(nil), def.Commands...)
		t.defs[def.Id] = &def
	}
	t.ids = util.SortedKeys(t.defs)
	return t
}

// Lookup panics when id is not in the table. Events are only ever built from
// ids the table itself reported.
func (t *Table) Lookup(id int) *model.CommonEventDefinition {
	def, ok := t.defs[id]
	if !ok {
		panic(fmt.Sprintf("common event %d not in database", id))
	}
	return def
}

func (t *Table) Get(id int) (*model.CommonEventDefinition, bool) {
	def, ok := t.defs[id]
	return def, ok
}

func (t *Table) Ids() []int {
	return append([]int(nil), t.ids...)
}

func (t *Table) Len() int {
	return len(t.ids)
}
