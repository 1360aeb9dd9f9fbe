package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"estatesim/internal/duel"
	"estatesim/internal/store"
)

type createRoomRequest struct {
	ScenarioID string `json:"scenarioId"`
	Seed       int64  `json:"seed"`
}

type roomResponse struct {
	Room    store.Room     `json:"room"`
	Players []store.Player `json:"players"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	m, err := duel.NewMatch(req.ScenarioID, req.Seed)
	if err != nil {
		s.errorHandler.HandleError(w, r, validationError(err.Error()))
		return
	}

	room, err := s.db.CreateRoom(r.Context(), req.ScenarioID, req.Seed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := s.db.SaveGameState(r.Context(), room.ID, m); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.logger.Info("room created", "room_id", room.ID, "code", room.Code, "scenario", req.ScenarioID)
	writeJSON(w, http.StatusCreated, roomResponse{Room: room})
}

type joinRoomRequest struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if req.Role != string(duel.RoleArchitect) && req.Role != string(duel.RoleProspect) {
		s.errorHandler.HandleError(w, r, validationError("role must be architect or prospect"))
		return
	}
	if req.UserID == "" {
		s.errorHandler.HandleError(w, r, validationError("userId is required"))
		return
	}

	room, err := s.db.RoomByCode(r.Context(), req.Code)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	player, err := s.db.JoinRoom(r.Context(), room.ID, req.UserID, req.Role)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	players, err := s.db.Players(r.Context(), room.ID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	room, err = s.db.RoomByID(r.Context(), room.ID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.logger.Info("player joined", "room_id", room.ID, "user", req.UserID, "role", req.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    room,
		"players": players,
		"player":  player,
	})
}

func (s *Server) roomFromURL(r *http.Request) (store.Room, error) {
	id, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		return store.Room{}, validationError("invalid room id")
	}
	return s.db.RoomByID(r.Context(), id)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.roomFromURL(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	players, err := s.db.Players(r.Context(), room.ID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{Room: room, Players: players})
}

func (s *Server) handleGetMatchState(w http.ResponseWriter, r *http.Request) {
	room, err := s.roomFromURL(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	var m duel.MatchState
	if err := s.db.LoadGameState(r.Context(), room.ID, &m); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": m})
}

func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	room, err := s.roomFromURL(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	turns, err := s.db.TurnResults(r.Context(), room.ID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

// submitPlanRequest carries one side's committed actions for the
// current turn. Exactly one of the action lists should match the role.
type submitPlanRequest struct {
	Role             string                 `json:"role"`
	ArchitectActions []duel.ArchitectAction `json:"architectActions,omitempty"`
	ProspectActions  []duel.ProspectAction  `json:"prospectActions,omitempty"`
}

type submitPlanResponse struct {
	Submitted bool             `json:"submitted"`
	Resolved  bool             `json:"resolved"`
	Result    *duel.TurnResult `json:"result,omitempty"`
	State     *duel.MatchState `json:"state,omitempty"`
}

// handleSubmitPlan buffers a side's plan and resolves the turn once
// both sides have committed. Resubmission before the other side
// commits replaces the earlier plan.
func (s *Server) handleSubmitPlan(w http.ResponseWriter, r *http.Request) {
	room, err := s.roomFromURL(r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if room.Status != store.RoomActive {
		s.errorHandler.HandleError(w, r, conflictError("room is not active"))
		return
	}

	var req submitPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	var plan any
	switch req.Role {
	case string(duel.RoleArchitect):
		plan = req.ArchitectActions
	case string(duel.RoleProspect):
		plan = req.ProspectActions
	default:
		s.errorHandler.HandleError(w, r, validationError("role must be architect or prospect"))
		return
	}

	// Serialize resolution per process: the store's unique constraint
	// on (room, turn) catches double resolution across processes.
	s.roomMu.Lock()
	defer s.roomMu.Unlock()

	if err := s.db.SubmitPlan(r.Context(), room.ID, room.CurrentTurn, req.Role, plan); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	plans, err := s.db.Plans(r.Context(), room.ID, room.CurrentTurn)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	archPlan, archOK := plans[string(duel.RoleArchitect)]
	prosPlan, prosOK := plans[string(duel.RoleProspect)]
	if !archOK || !prosOK {
		writeJSON(w, http.StatusOK, submitPlanResponse{Submitted: true})
		return
	}

	var m duel.MatchState
	if err := s.db.LoadGameState(r.Context(), room.ID, &m); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	var architect []duel.ArchitectAction
	var prospect []duel.ProspectAction
	if err := unmarshalPlan(archPlan, &architect); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := unmarshalPlan(prosPlan, &prospect); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	result := duel.ResolveTurn(&m, prospect, architect)

	if err := s.db.SaveTurnResult(r.Context(), room.ID, result.Turn, result); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := s.db.SaveGameState(r.Context(), room.ID, &m); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	status := store.RoomActive
	if m.Status == duel.StatusFinished {
		status = store.RoomFinished
	}
	if err := s.db.UpdateRoomStatus(r.Context(), room.ID, status, m.CurrentTurn); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.logger.Info("turn resolved", "room_id", room.ID, "turn", result.Turn, "status", status)
	writeJSON(w, http.StatusOK, submitPlanResponse{
		Submitted: true,
		Resolved:  true,
		Result:    &result,
		State:     &m,
	})
}

func unmarshalPlan(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return validationError("invalid stored plan: " + err.Error())
	}
	return nil
}
