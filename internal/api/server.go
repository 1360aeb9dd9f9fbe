// Package api exposes the simulation over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"estatesim/internal/sim"
	"estatesim/internal/store"
)

// Server handles HTTP requests. Solo games are kept live in memory so
// the undo stack survives between requests; every mutation is also
// persisted so a game can be resumed (without undo history) after a
// restart.
type Server struct {
	db           *store.Store
	errorHandler *ErrorHandler
	logger       *slog.Logger
	startTime    time.Time

	mu    sync.Mutex
	games map[uuid.UUID]*sim.Game

	// roomMu serializes turn resolution so two submissions cannot
	// resolve the same turn twice.
	roomMu sync.Mutex
}

// NewServer creates a new API server.
func NewServer(db *store.Store, logger *slog.Logger) *Server {
	return &Server{
		db:           db,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		startTime:    time.Now(),
		games:        make(map[uuid.UUID]*sim.Game),
	}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/scenarios", s.handleListScenarios)

		r.Route("/games", func(r chi.Router) {
			r.Post("/", s.handleCreateGame)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Get("/actions", s.handleAvailableActions)
				r.Post("/actions", s.handlePerformAction)
				r.Post("/undo", s.handleUndo)
				r.Post("/end-turn", s.handleEndTurn)
				r.Post("/event", s.handleResolveEvent)
			})
		})

		r.Post("/replay/verify", s.handleVerifyReplay)

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", s.handleCreateRoom)
			r.Post("/join", s.handleJoinRoom)
			r.Route("/{roomID}", func(r chi.Router) {
				r.Get("/", s.handleGetRoom)
				r.Get("/state", s.handleGetMatchState)
				r.Get("/turns", s.handleListTurns)
				r.Post("/plans", s.handleSubmitPlan)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return validationError("invalid request body: " + err.Error())
	}
	return nil
}

// --------- Health ---------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"uptime":  time.Since(s.startTime).String(),
		"version": Version,
	})
}

// --------- Scenarios ---------

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": sim.Scenarios})
}

// --------- Solo games ---------

type createGameRequest struct {
	ScenarioID string `json:"scenarioId"`
	Seed       int64  `json:"seed"`
}

type gameResponse struct {
	ID        uuid.UUID      `json:"id"`
	State     *sim.GameState `json:"state"`
	UndoDepth int            `json:"undoDepth"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	g, err := sim.New(req.ScenarioID, req.Seed)
	if err != nil {
		s.errorHandler.HandleError(w, r, validationError(err.Error()))
		return
	}

	id := uuid.New()
	s.mu.Lock()
	s.games[id] = g
	s.mu.Unlock()

	if err := s.db.SaveSoloGame(r.Context(), id, g.State()); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.logger.Info("game created", "game_id", id, "scenario", req.ScenarioID, "seed", req.Seed)
	writeJSON(w, http.StatusCreated, gameResponse{ID: id, State: g.State(), UndoDepth: g.UndoDepth()})
}

// loadGame fetches the live game, falling back to the persisted state.
func (s *Server) loadGame(r *http.Request) (uuid.UUID, *sim.Game, error) {
	id, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		return uuid.Nil, nil, validationError("invalid game id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[id]; ok {
		return id, g, nil
	}

	var state sim.GameState
	if err := s.db.LoadSoloGame(r.Context(), id, &state); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return uuid.Nil, nil, notFoundError("game not found")
		}
		return uuid.Nil, nil, err
	}
	g := sim.Resume(&state)
	s.games[id] = g
	return id, g, nil
}

func (s *Server) persistGame(w http.ResponseWriter, r *http.Request, id uuid.UUID, g *sim.Game) bool {
	if err := s.db.SaveSoloGame(r.Context(), id, g.State()); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, g, err := s.loadGame(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, State: g.State(), UndoDepth: g.UndoDepth()})
}

func (s *Server) handleAvailableActions(w http.ResponseWriter, r *http.Request) {
	_, g, err := s.loadGame(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	nodeID := r.URL.Query().Get("node")
	writeJSON(w, http.StatusOK, map[string]any{
		"actions": sim.AvailableActions(g.State(), nodeID),
	})
}

func (s *Server) handlePerformAction(w http.ResponseWriter, r *http.Request) {
	id, g, err := s.loadGame(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	var req sim.ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := g.PerformAction(req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if !s.persistGame(w, r, id, g) {
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, State: g.State(), UndoDepth: g.UndoDepth()})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id, g, err := s.loadGame(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := g.Undo(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if !s.persistGame(w, r, id, g) {
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, State: g.State(), UndoDepth: g.UndoDepth()})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	id, g, err := s.loadGame(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	breakdown, err := g.EndTurn()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if !s.persistGame(w, r, id, g) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":            id,
		"state":         g.State(),
		"costBreakdown": breakdown,
	})
}

type resolveEventRequest struct {
	ChoiceID string `json:"choiceId"`
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	id, g, err := s.loadGame(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	var req resolveEventRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := g.ResolveEvent(req.ChoiceID); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if !s.persistGame(w, r, id, g) {
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, State: g.State(), UndoDepth: g.UndoDepth()})
}
