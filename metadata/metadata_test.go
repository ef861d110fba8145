package metadata

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/stretchr/testify/require"
)

func copyTestdata(t *testing.T, name string) string {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFileStorageLoad(t *testing.T) {
	for _, name := range []string{"commonevents.yaml", "commonevents.json"} {
		t.Run(name, func(t *testing.T) {
			fs, err := NewFileStorage(copyTestdata(t, name))
			require.NoError(t, err)

			defs, err := fs.ListCommonEvents()
			require.NoError(t, err)
			require.Len(t, defs, 3)
			require.Equal(t, []int{1, 2, 3}, []int{defs[0].Id, defs[1].Id, defs[2].Id})

			rain, err := fs.GetCommonEvent(2)
			require.NoError(t, err)
			require.Equal(t, "rain", rain.Name)
			require.Equal(t, model.TRIGGER_PARALLEL, rain.Trigger)
			require.True(t, rain.SwitchFlag)
			require.Equal(t, 4, rain.SwitchId)
			require.Len(t, rain.Commands, 2)

			intro, err := fs.GetCommonEvent(1)
			require.NoError(t, err)
			require.Equal(t, model.TRIGGER_AUTO_START, intro.Trigger)

			_, err = fs.GetCommonEvent(42)
			require.True(t, persistence.IsNotFound(err))
		})
	}
}

func TestFileStorageMissingFile(t *testing.T) {
	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	defs, err := fs.ListCommonEvents()
	require.NoError(t, err)
	require.Empty(t, defs)
}

func TestFileStorageDuplicateIds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"commonEvents":[{"id":1,"trigger":5},{"id":1,"trigger":5}]}`), 0o644))
	_, err := NewFileStorage(path)
	require.Error(t, err)
}

func TestFileStorageSaveDelete(t *testing.T) {
	for _, name := range []string{"commonevents.yaml", "commonevents.json"} {
		t.Run(name, func(t *testing.T) {
			path := copyTestdata(t, name)
			fs, err := NewFileStorage(path)
			require.NoError(t, err)

			require.NoError(t, fs.SaveCommonEvent(model.CommonEventDefinition{
				Id:      9,
				Name:    "bell",
				Trigger: model.TRIGGER_CALL,
				Commands: []model.EventCommand{
					{Code: "switch", Parameters: map[string]any{"id": 2}},
				},
			}))
			require.NoError(t, fs.DeleteCommonEvent(1))
			require.True(t, persistence.IsNotFound(fs.DeleteCommonEvent(1)))

			reopened, err := NewFileStorage(path)
			require.NoError(t, err)
			defs, err := reopened.ListCommonEvents()
			require.NoError(t, err)
			require.Equal(t, []int{2, 3, 9}, []int{defs[0].Id, defs[1].Id, defs[2].Id})
			require.Equal(t, model.TRIGGER_CALL, defs[2].Trigger)
			require.Equal(t, "switch", defs[2].Commands[0].Code)
		})
	}
}

func TestFileStorageWatch(t *testing.T) {
	path := copyTestdata(t, "commonevents.json")
	fs, err := NewFileStorage(path)
	require.NoError(t, err)
	fs.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var changes int64
	require.NoError(t, fs.Watch(ctx, func() {
		atomic.AddInt64(&changes, 1)
	}))

	require.NoError(t, os.WriteFile(path, []byte(`{"commonEvents":[{"id":7,"name":"only","trigger":"call"}]}`), 0o644))
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&changes) > 0
	}, 5*time.Second, 10*time.Millisecond)

	defs, err := fs.ListCommonEvents()
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, 7, defs[0].Id)
}

func def(id int, trigger model.Trigger, commands ...model.EventCommand) model.CommonEventDefinition {
	return model.CommonEventDefinition{Id: id, Trigger: trigger, Commands: commands}
}

func TestServiceValidate(t *testing.T) {
	svc := NewMetadataService(nil)
	tests := map[string]struct {
		defs  []model.CommonEventDefinition
		valid bool
	}{
		"valid": {[]model.CommonEventDefinition{
			def(1, model.TRIGGER_PARALLEL, model.EventCommand{Code: "call", Parameters: map[string]any{"eventId": 2}}),
			def(2, model.TRIGGER_CALL),
		}, true},
		"duplicate id":   {[]model.CommonEventDefinition{def(1, model.TRIGGER_CALL), def(1, model.TRIGGER_CALL)}, false},
		"zero id":        {[]model.CommonEventDefinition{def(0, model.TRIGGER_CALL)}, false},
		"bad trigger":    {[]model.CommonEventDefinition{def(1, model.Trigger(9))}, false},
		"gated, no id":   {[]model.CommonEventDefinition{{Id: 1, Trigger: model.TRIGGER_PARALLEL, SwitchFlag: true}}, false},
		"unknown code":   {[]model.CommonEventDefinition{def(1, model.TRIGGER_CALL, model.EventCommand{Code: "fly"})}, false},
		"unknown target": {[]model.CommonEventDefinition{def(1, model.TRIGGER_CALL, model.EventCommand{Code: "call", Parameters: map[string]any{"eventId": 5}})}, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := svc.Validate(tc.defs)
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestServiceLoad(t *testing.T) {
	fs, err := NewFileStorage(copyTestdata(t, "commonevents.yaml"))
	require.NoError(t, err)
	svc := NewMetadataService(fs)

	table, err := svc.Load()
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, table.Ids())
	require.Equal(t, "shop", table.Lookup(3).Name)
	require.Panics(t, func() {
		table.Lookup(99)
	})
	_, ok := table.Get(99)
	require.False(t, ok)
}

func TestServiceCache(t *testing.T) {
	fs, err := NewFileStorage(copyTestdata(t, "commonevents.yaml"))
	require.NoError(t, err)
	svc := NewMetadataService(fs)

	first, err := svc.GetCommonEvent(2)
	require.NoError(t, err)
	require.Equal(t, "rain", first.Name)

	changed := *first
	changed.Name = "storm"
	require.NoError(t, fs.SaveCommonEvent(changed))
	cached, err := svc.GetCommonEvent(2)
	require.NoError(t, err)
	require.Equal(t, "rain", cached.Name)

	changed.Name = "drizzle"
	require.NoError(t, svc.SaveCommonEvent(changed))
	fresh, err := svc.GetCommonEvent(2)
	require.NoError(t, err)
	require.Equal(t, "drizzle", fresh.Name)

	invalid := changed
	invalid.Commands = []model.EventCommand{{Code: "call", Parameters: map[string]any{"eventId": 77}}}
	require.Error(t, svc.SaveCommonEvent(invalid))
}

func TestServiceDelete(t *testing.T) {
	fs, err := NewFileStorage(copyTestdata(t, "commonevents.yaml"))
	require.NoError(t, err)
	svc := NewMetadataService(fs)

	_, err = svc.GetCommonEvent(3)
	require.NoError(t, err)
	require.ErrorContains(t, svc.DeleteCommonEvent(2), "called by common event 3")

	require.NoError(t, svc.DeleteCommonEvent(3))
	_, err = svc.GetCommonEvent(3)
	require.True(t, persistence.IsNotFound(err))
	require.True(t, persistence.IsNotFound(svc.DeleteCommonEvent(3)))

	require.NoError(t, svc.DeleteCommonEvent(2))
	table, err := svc.Load()
	require.NoError(t, err)
	require.Equal(t, []int{1}, table.Ids())
}
