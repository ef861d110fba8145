package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/commonevent/engine"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/metadata"
	"github.com/mohitkumar/commonevent/persistence"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port            int
	metadataService metadata.MetadataService
	engine          *engine.Engine
}

func NewServer(httpPort int, metadataService metadata.MetadataService, eng *engine.Engine) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		metadataService: metadataService,
		engine:          eng,
		Port:            httpPort,
	}

	router := mux.NewRouter()
	router.HandleFunc("/events", s.HandleListEvents).Methods(http.MethodGet)
	router.HandleFunc("/events/waiting/foreground", s.HandleWaitingForeground).Methods(http.MethodGet)
	router.HandleFunc("/events/{id:[0-9]+}", s.HandleGetEvent).Methods(http.MethodGet)
	router.HandleFunc("/events/{id:[0-9]+}/save", s.HandleGetEventSaveData).Methods(http.MethodGet)
	router.HandleFunc("/events/{id:[0-9]+}/commands", s.HandleSetCommands).Methods(http.MethodPut)

	router.HandleFunc("/switches/{id:[0-9]+}", s.HandleGetSwitch).Methods(http.MethodGet)
	router.HandleFunc("/switches/{id:[0-9]+}", s.HandleSetSwitch).Methods(http.MethodPut)
	router.HandleFunc("/variables/{id:[0-9]+}", s.HandleGetVariable).Methods(http.MethodGet)
	router.HandleFunc("/variables/{id:[0-9]+}", s.HandleSetVariable).Methods(http.MethodPut)

	router.HandleFunc("/saves", s.HandleListSaves).Methods(http.MethodGet)
	router.HandleFunc("/saves/{slot}", s.HandleSave).Methods(http.MethodPost)
	router.HandleFunc("/saves/{slot}", s.HandleDeleteSave).Methods(http.MethodDelete)
	router.HandleFunc("/saves/{slot}/load", s.HandleLoad).Methods(http.MethodPost)

	router.HandleFunc("/metadata/commonevent", s.HandleCreateCommonEvent).Methods(http.MethodPost)
	router.HandleFunc("/metadata/commonevent/{id:[0-9]+}", s.HandleGetCommonEvent).Methods(http.MethodGet)
	router.HandleFunc("/metadata/commonevent/{id:[0-9]+}", s.HandleDeleteCommonEvent).Methods(http.MethodDelete)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server", zap.Error(err))
	}
	return err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI, zap.String("method", r.Method))
		next.ServeHTTP(w, r)
	})
}

func pathId(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	respondWithJSON(w, http.StatusOK, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithLookupError maps missing entities to 404 and everything else to code.
func respondWithLookupError(w http.ResponseWriter, err error, code int) {
	if persistence.IsNotFound(err) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithError(w, code, err.Error())
}
