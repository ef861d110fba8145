package rest

import (
	"encoding/json"
	"net/http"

	"github.com/mohitkumar/commonevent/engine"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/model"
	"go.uber.org/zap"
)

func (s *Server) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.engine.Events())
}

func (s *Server) HandleWaitingForeground(w http.ResponseWriter, r *http.Request) {
	waiting := s.engine.WaitingForeground()
	if waiting == nil {
		waiting = []engine.EventStatus{}
	}
	respondWithJSON(w, http.StatusOK, waiting)
}

func (s *Server) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid common event id")
		return
	}
	ev, err := s.engine.Event(id)
	if err != nil {
		respondWithLookupError(w, err, http.StatusInternalServerError)
		return
	}
	respondWithJSON(w, http.StatusOK, ev)
}

func (s *Server) HandleGetEventSaveData(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid common event id")
		return
	}
	data, err := s.engine.EventSaveData(id)
	if err != nil {
		respondWithLookupError(w, err, http.StatusInternalServerError)
		return
	}
	respondWithJSON(w, http.StatusOK, data)
}

func (s *Server) HandleSetCommands(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid common event id")
		return
	}
	var commands []model.EventCommand
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&commands); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid command list")
		return
	}
	if err := s.engine.SetCommands(id, commands); err != nil {
		logger.Error("error setting commands", zap.Int("commonEventId", id), zap.Error(err))
		respondWithLookupError(w, err, http.StatusBadRequest)
		return
	}
	respondOK(w, map[string]any{"updated": true, "commands": len(commands)})
}
