package rest

import (
	"encoding/json"
	"net/http"
)

type switchRequest struct {
	Value bool `json:"value"`
}

type variableRequest struct {
	Value int `json:"value"`
}

func (s *Server) HandleGetSwitch(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid switch id")
		return
	}
	respondOK(w, map[string]any{"id": id, "value": s.engine.Switch(id)})
}

func (s *Server) HandleSetSwitch(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid switch id")
		return
	}
	var req switchRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := s.engine.SetSwitch(id, req.Value); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, map[string]any{"id": id, "value": req.Value})
}

func (s *Server) HandleGetVariable(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid variable id")
		return
	}
	respondOK(w, map[string]any{"id": id, "value": s.engine.Variable(id)})
}

func (s *Server) HandleSetVariable(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid variable id")
		return
	}
	var req variableRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := s.engine.SetVariable(id, req.Value); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, map[string]any{"id": id, "value": req.Value})
}
