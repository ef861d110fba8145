package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mohitkumar/commonevent/config"
	"github.com/stretchr/testify/require"
)

const database = `
commonEvents:
  - id: 1
    name: clock
    trigger: parallel
    commands:
      - code: variable
        parameters: {id: 1, op: add, value: 1}
      - code: wait
        parameters: {ticks: 1}
`

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	path := filepath.Join(dir, "commonevents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(database), 0o644))
	return config.Config{
		DatabasePath:       path,
		StorageType:        config.STORAGE_TYPE_FILE,
		FileConfig:         config.FileStorageConfig{Dir: filepath.Join(dir, "saves"), Compress: true},
		TickRate:           time.Millisecond,
		EncoderDecoderType: config.JSON_ENCODER_DECODER,
		LogLevel:           "warn",
	}
}

func TestAgentTicksSaveAndLoad(t *testing.T) {
	conf := testConfig(t)
	conf.SaveSlot = "auto"
	a, err := New(conf)
	require.NoError(t, err)
	a.RunTicks(7)
	require.Equal(t, 3, a.Engine().Variable(1))
	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())

	conf.SaveSlot = ""
	conf.LoadSlot = "auto"
	b, err := New(conf)
	require.NoError(t, err)
	require.Equal(t, int64(7), b.Engine().Tick())
	require.Equal(t, 3, b.Engine().Variable(1))
	require.NoError(t, b.Shutdown())
}

func TestAgentMissingLoadSlot(t *testing.T) {
	conf := testConfig(t)
	conf.LoadSlot = "nothing"
	_, err := New(conf)
	require.Error(t, err)
}

func TestAgentInvalidConfig(t *testing.T) {
	conf := testConfig(t)
	conf.TickRate = 0
	_, err := New(conf)
	require.Error(t, err)
}

func TestAgentStartWatch(t *testing.T) {
	conf := testConfig(t)
	conf.Watch = true
	a, err := New(conf)
	require.NoError(t, err)
	require.NoError(t, a.Start())
	require.Eventually(t, func() bool {
		return a.Engine().Tick() > 2
	}, time.Second, time.Millisecond)

	updated := database + `
  - id: 2
    name: bell
    trigger: call
`
	require.NoError(t, os.WriteFile(conf.DatabasePath, []byte(updated), 0o644))
	require.Eventually(t, func() bool {
		return len(a.Engine().Events()) == 2
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, a.Shutdown())
}
