package event

import (
	"testing"

	"github.com/mohitkumar/commonevent/model"
	"github.com/stretchr/testify/require"
)

func registryFixture() *fixture {
	return newFixture(
		model.CommonEventDefinition{Id: 4, Trigger: model.TRIGGER_PARALLEL, Commands: oneCommand},
		model.CommonEventDefinition{Id: 1, Trigger: model.TRIGGER_AUTO_START, Commands: oneCommand},
		model.CommonEventDefinition{Id: 2, Trigger: model.TRIGGER_AUTO_START, SwitchFlag: true, SwitchId: 1, Commands: oneCommand},
		model.CommonEventDefinition{Id: 3, Trigger: model.TRIGGER_PARALLEL, SwitchFlag: true, SwitchId: 2, Commands: oneCommand},
	)
}

func TestRegistryIdsSorted(t *testing.T) {
	f := registryFixture()
	r := NewRegistry([]int{4, 1, 3, 2, 4}, f.env())
	require.Equal(t, []int{1, 2, 3, 4}, r.Ids())
	require.Equal(t, 4, r.Len())

	ce, ok := r.Get(3)
	require.True(t, ok)
	require.Equal(t, 3, ce.GetIndex())
	_, ok = r.Get(9)
	require.False(t, ok)
}

func TestRegistryWaitingForeground(t *testing.T) {
	f := registryFixture()
	r := NewRegistry([]int{1, 2, 3, 4}, f.env())

	waiting := r.WaitingForeground()
	require.Len(t, waiting, 1)
	require.Equal(t, 1, waiting[0].GetIndex())

	f.switches[1] = true
	waiting = r.WaitingForeground()
	require.Len(t, waiting, 2)
	require.Equal(t, 2, waiting[1].GetIndex())
}

func TestRegistryUpdate(t *testing.T) {
	f := registryFixture()
	r := NewRegistry([]int{1, 2, 3, 4}, f.env())
	r.Refresh()
	require.Len(t, f.interpreters, 2)

	r.Update()
	ce3, _ := r.Get(3)
	ce4, _ := r.Get(4)
	require.False(t, ce3.IsRunning())
	require.True(t, ce4.IsRunning())
	require.Equal(t, 1, r.RunningBackground())

	f.switches[2] = true
	r.Update()
	require.True(t, ce3.IsRunning())
	require.Equal(t, 2, r.RunningBackground())
}

func TestRegistrySaveRoundTrip(t *testing.T) {
	f := registryFixture()
	r := NewRegistry([]int{1, 2, 3, 4}, f.env())
	r.SetSaveData([]model.SaveCommonEvent{
		{Id: 3, State: model.SaveEventExecState{Stack: sampleStack()}},
		{Id: 99, State: model.SaveEventExecState{Stack: sampleStack()}},
	})

	saved := r.GetSaveData()
	require.Len(t, saved, 4)
	for i, id := range []int{1, 2, 3, 4} {
		require.Equal(t, id, saved[i].Id)
	}
	require.Empty(t, saved[0].State.Stack)
	require.Equal(t, sampleStack(), saved[2].State.Stack)
	require.Empty(t, saved[3].State.Stack)

	ce4, _ := r.Get(4)
	require.True(t, ce4.HasInterpreter())
	ce1, _ := r.Get(1)
	require.False(t, ce1.HasInterpreter())

	g := registryFixture()
	restored := NewRegistry([]int{1, 2, 3, 4}, g.env())
	restored.SetSaveData(saved)
	require.Equal(t, saved, restored.GetSaveData())
}
