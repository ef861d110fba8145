package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/commonevent/logger"
	"go.uber.org/zap"
)

func (s *Server) HandleListSaves(w http.ResponseWriter, r *http.Request) {
	slots, err := s.engine.ListSaves()
	if err != nil {
		logger.Error("error listing saves", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing saves")
		return
	}
	respondOK(w, map[string]any{"slots": slots})
}

func (s *Server) HandleSave(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	save, err := s.engine.Save(slot)
	if err != nil {
		logger.Error("error saving game", zap.String("slot", slot), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, map[string]any{"id": save.Id, "slot": slot, "tick": save.Tick})
}

func (s *Server) HandleLoad(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	save, err := s.engine.Load(slot)
	if err != nil {
		logger.Error("error loading game", zap.String("slot", slot), zap.Error(err))
		respondWithLookupError(w, err, http.StatusBadRequest)
		return
	}
	respondOK(w, map[string]any{"id": save.Id, "slot": slot, "tick": save.Tick})
}

func (s *Server) HandleDeleteSave(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	if err := s.engine.DeleteSave(slot); err != nil {
		logger.Error("error deleting save", zap.String("slot", slot), zap.Error(err))
		respondWithLookupError(w, err, http.StatusBadRequest)
		return
	}
	respondOK(w, map[string]any{"slot": slot, "deleted": true})
}
