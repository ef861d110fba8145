package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohitkumar/commonevent/engine"
	"github.com/mohitkumar/commonevent/metadata"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence/file"
	"github.com/mohitkumar/commonevent/util"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	storage, err := metadata.NewFileStorage(filepath.Join(t.TempDir(), "commonevents.json"))
	require.NoError(t, err)
	for _, def := range []model.CommonEventDefinition{
		{Id: 1, Name: "intro", Trigger: model.TRIGGER_AUTO_START, SwitchFlag: true, SwitchId: 3, Commands: []model.EventCommand{
			{Code: "message", Parameters: map[string]any{"text": "hi"}},
		}},
		{Id: 2, Name: "clock", Trigger: model.TRIGGER_PARALLEL, Commands: []model.EventCommand{
			{Code: "variable", Parameters: map[string]any{"id": 1, "op": "add", "value": 1}},
			{Code: "wait", Parameters: map[string]any{"ticks": 10}},
		}},
	} {
		require.NoError(t, storage.SaveCommonEvent(def))
	}
	svc := metadata.NewMetadataService(storage)
	table, err := svc.Load()
	require.NoError(t, err)
	saves, err := file.NewFileSaveStorage(file.Config{Dir: t.TempDir(), Compress: true}, util.NewJsonEncoderDecoder[model.SaveGame]())
	require.NoError(t, err)
	s, err := NewServer(0, svc, engine.New(table, saves, engine.Config{}))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method string, path string, body string) (int, []byte) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func TestEventRoutes(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, code)
	var events []engine.EventStatus
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 2)
	require.Equal(t, model.TRIGGER_PARALLEL, events[1].Trigger)

	code, body = do(t, s, http.MethodGet, "/events/2", "")
	require.Equal(t, http.StatusOK, code)
	var ev engine.EventStatus
	require.NoError(t, json.Unmarshal(body, &ev))
	require.Equal(t, "clock", ev.Name)
	require.True(t, ev.HasInterpreter)

	code, _ = do(t, s, http.MethodGet, "/events/9", "")
	require.Equal(t, http.StatusNotFound, code)

	s.engine.Step()
	code, body = do(t, s, http.MethodGet, "/events/2/save", "")
	require.Equal(t, http.StatusOK, code)
	var data model.SaveEventExecState
	require.NoError(t, json.Unmarshal(body, &data))
	require.Len(t, data.Stack, 1)
	require.Equal(t, 10, data.Stack[0].WaitTicks)
}

func TestWaitingForegroundRoute(t *testing.T) {
	s := newTestServer(t)
	code, body := do(t, s, http.MethodGet, "/events/waiting/foreground", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `[]`, string(body))

	code, _ = do(t, s, http.MethodPut, "/switches/3", `{"value": true}`)
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, s, http.MethodGet, "/events/waiting/foreground", "")
	require.Equal(t, http.StatusOK, code)
	var waiting []engine.EventStatus
	require.NoError(t, json.Unmarshal(body, &waiting))
	require.Len(t, waiting, 1)
	require.Equal(t, 1, waiting[0].Id)
}

func TestSetCommandsRoute(t *testing.T) {
	s := newTestServer(t)
	code, _ := do(t, s, http.MethodPut, "/events/2/commands", `[{"code":"teleport"}]`)
	require.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodPut, "/events/9/commands", `[]`)
	require.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodPut, "/events/2/commands", `not json`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPut, "/events/2/commands", `[{"code":"variable","parameters":{"id":5,"value":8}}]`)
	require.Equal(t, http.StatusOK, code)
	s.engine.Step()
	code, body := do(t, s, http.MethodGet, "/variables/5", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"id":5,"value":8}`, string(body))
}

func TestStateRoutes(t *testing.T) {
	s := newTestServer(t)
	code, _ := do(t, s, http.MethodPut, "/variables/4", `{"value": 12}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 12, s.engine.Variable(4))

	code, _ = do(t, s, http.MethodPut, "/variables/0", `{"value": 12}`)
	require.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodPut, "/switches/4611686018427387904", `{"value": true}`)
	require.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodPut, "/variables/1000000000", `{"value": 1}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, s, http.MethodGet, "/switches/7", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"id":7,"value":false}`, string(body))
}

func TestSaveRoutes(t *testing.T) {
	s := newTestServer(t)
	s.engine.Step()

	code, _ := do(t, s, http.MethodPost, "/saves/slot1", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, s, http.MethodPost, "/saves/bad.slot", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, s, http.MethodGet, "/saves", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"slots":["slot1"]}`, string(body))

	s.engine.Step()
	s.engine.Step()
	require.NoError(t, s.engine.SetVariable(1, 40))

	code, _ = do(t, s, http.MethodPost, "/saves/slot1/load", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int64(1), s.engine.Tick())
	require.Equal(t, 1, s.engine.Variable(1))

	code, _ = do(t, s, http.MethodPost, "/saves/empty/load", "")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodDelete, "/saves/slot1", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, s, http.MethodDelete, "/saves/slot1", "")
	require.Equal(t, http.StatusNotFound, code)
	code, body = do(t, s, http.MethodGet, "/saves", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"slots":[]}`, string(body))
}

func TestMetadataRoutes(t *testing.T) {
	s := newTestServer(t)
	code, body := do(t, s, http.MethodGet, "/metadata/commonevent/2", "")
	require.Equal(t, http.StatusOK, code)
	var def model.CommonEventDefinition
	require.NoError(t, json.Unmarshal(body, &def))
	require.Equal(t, "clock", def.Name)

	code, _ = do(t, s, http.MethodGet, "/metadata/commonevent/8", "")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodPost, "/metadata/commonevent", `{"id":3,"name":"bell","trigger":"call","commands":[{"code":"call","parameters":{"eventId":99}}]}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/metadata/commonevent", `{"id":3,"name":"bell","trigger":"call","commands":[{"code":"call","parameters":{"eventId":1}}]}`)
	require.Equal(t, http.StatusOK, code)
	code, body = do(t, s, http.MethodGet, "/events/3", "")
	require.Equal(t, http.StatusOK, code)
	var ev engine.EventStatus
	require.NoError(t, json.Unmarshal(body, &ev))
	require.Equal(t, "bell", ev.Name)
	require.Equal(t, model.TRIGGER_CALL, ev.Trigger)
}

func TestDeleteCommonEventRoute(t *testing.T) {
	s := newTestServer(t)
	code, _ := do(t, s, http.MethodPost, "/metadata/commonevent", `{"id":3,"name":"bell","trigger":"call","commands":[{"code":"call","parameters":{"eventId":1}}]}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, s, http.MethodDelete, "/metadata/commonevent/1", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodDelete, "/metadata/commonevent/3", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, s, http.MethodGet, "/events/3", "")
	require.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodGet, "/metadata/commonevent/3", "")
	require.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodDelete, "/metadata/commonevent/3", "")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodDelete, "/metadata/commonevent/1", "")
	require.Equal(t, http.StatusOK, code)
	code, body := do(t, s, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, code)
	var events []engine.EventStatus
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 1)
	require.Equal(t, 2, events[0].Id)
}
