package api

import (
	"net/http"

	"estatesim/internal/replay"
	"estatesim/internal/sim"
)

type verifyReplayRequest struct {
	Recording replay.Recording `json:"recording"`
	State     *sim.GameState   `json:"state,omitempty"`
}

type verifyReplayResponse struct {
	Valid  bool           `json:"valid"`
	Reason string         `json:"reason,omitempty"`
	State  *sim.GameState `json:"state"`
}

// handleVerifyReplay re-runs a recording. With an expected state
// attached it verifies bit-for-bit agreement; without one it just
// returns the rebuilt state.
func (s *Server) handleVerifyReplay(w http.ResponseWriter, r *http.Request) {
	var req verifyReplayRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	rebuilt, err := replay.Run(req.Recording)
	if err != nil {
		writeJSON(w, http.StatusOK, verifyReplayResponse{Valid: false, Reason: err.Error()})
		return
	}
	if req.State != nil {
		if err := replay.Verify(req.Recording, req.State); err != nil {
			writeJSON(w, http.StatusOK, verifyReplayResponse{Valid: false, Reason: err.Error(), State: rebuilt})
			return
		}
	}
	writeJSON(w, http.StatusOK, verifyReplayResponse{Valid: true, State: rebuilt})
}
