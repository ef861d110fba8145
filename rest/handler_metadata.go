package rest

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/model"
)

func (s *Server) HandleCreateCommonEvent(w http.ResponseWriter, r *http.Request) {
	var def model.CommonEventDefinition
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid common event definition")
		return
	}
	if err := s.metadataService.SaveCommonEvent(def); err != nil {
		logger.Error("error creating common event", zap.Int("commonEventId", def.Id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.reload(w) {
		return
	}
	respondOK(w, map[string]any{"created": true})
}

func (s *Server) HandleDeleteCommonEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid common event id")
		return
	}
	if err := s.metadataService.DeleteCommonEvent(id); err != nil {
		logger.Error("error deleting common event", zap.Int("commonEventId", id), zap.Error(err))
		respondWithLookupError(w, err, http.StatusBadRequest)
		return
	}
	if !s.reload(w) {
		return
	}
	respondOK(w, map[string]any{"deleted": true})
}

// reload hands the stored definitions to the engine and reports whether it
// succeeded. On failure the error response is already written.
func (s *Server) reload(w http.ResponseWriter) bool {
	table, err := s.metadataService.Load()
	if err != nil {
		logger.Error("error reloading common events", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error reloading common events")
		return false
	}
	s.engine.Reload(table)
	return true
}

func (s *Server) HandleGetCommonEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid common event id")
		return
	}
	def, err := s.metadataService.GetCommonEvent(id)
	if err != nil {
		logger.Info("common event does not exist", zap.Int("commonEventId", id))
		respondWithLookupError(w, err, http.StatusInternalServerError)
		return
	}
	respondWithJSON(w, http.StatusOK, def)
}
