package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/mohitkumar/commonevent/util"
	"github.com/stretchr/testify/require"
)

func sampleSave(slot string) model.SaveGame {
	return model.SaveGame{
		Id:        "b2",
		Slot:      slot,
		Tick:      7,
		SavedAt:   time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC),
		Switches:  []bool{false, true},
		Variables: []int{3},
		CommonEvents: []model.SaveCommonEvent{
			{Id: 2, State: model.SaveEventExecState{Stack: []model.SaveEventExecFrame{{
				ID: 4, EventID: 2, CommandIndex: 2,
				Commands: []model.EventCommand{{Code: "end"}},
			}}}},
		},
	}
}

func TestFileSaveStorage(t *testing.T) {
	tests := map[string]bool{
		"plain":      false,
		"compressed": true,
	}
	for name, compress := range tests {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "saves")
			storage, err := NewFileSaveStorage(Config{Dir: dir, Compress: compress}, util.NewJsonEncoderDecoder[model.SaveGame]())
			require.NoError(t, err)

			_, err = storage.Load("slot1")
			require.True(t, persistence.IsNotFound(err))

			save := sampleSave("slot1")
			require.NoError(t, storage.Save("slot1", save))
			require.NoError(t, storage.Save("quick", sampleSave("quick")))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

			raw, err := os.ReadFile(filepath.Join(dir, "slot1"+SAVE_EXT))
			require.NoError(t, err)
			require.Equal(t, !compress, raw[0] == '{')

			loaded, err := storage.Load("slot1")
			require.NoError(t, err)
			require.Equal(t, save, *loaded)

			slots, err := storage.List()
			require.NoError(t, err)
			require.Equal(t, []string{"quick", "slot1"}, slots)

			require.NoError(t, storage.Delete("quick"))
			require.True(t, persistence.IsNotFound(storage.Delete("quick")))
		})
	}
}

func TestFileSaveStorageReadsEitherFormat(t *testing.T) {
	dir := t.TempDir()
	codec := util.NewJsonEncoderDecoder[model.SaveGame]()
	compressed, err := NewFileSaveStorage(Config{Dir: dir, Compress: true}, codec)
	require.NoError(t, err)
	require.NoError(t, compressed.Save("slot1", sampleSave("slot1")))

	plain, err := NewFileSaveStorage(Config{Dir: dir}, codec)
	require.NoError(t, err)
	loaded, err := plain.Load("slot1")
	require.NoError(t, err)
	require.Equal(t, "b2", loaded.Id)
}

func TestFileSaveStorageInvalidSlot(t *testing.T) {
	storage, err := NewFileSaveStorage(Config{Dir: t.TempDir()}, util.NewJsonEncoderDecoder[model.SaveGame]())
	require.NoError(t, err)
	for _, slot := range []string{"", "../escape", "a/b", "dot.ted"} {
		require.Error(t, storage.Save(slot, sampleSave(slot)), slot)
		_, err := storage.Load(slot)
		require.Error(t, err, slot)
	}
}
