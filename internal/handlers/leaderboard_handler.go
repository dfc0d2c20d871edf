package handlers

import (
	"net/http"

	"spellingbee/internal/service"
)

// LeaderboardHandler serves the public XP leaderboard
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Leaderboard returns ranked students for ?grade=, ?schoolId= and ?limit=
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	filter, ok := studentFilter(w, r)
	if !ok {
		return
	}
	if filter.Limit, ok = queryInt(w, r, "limit"); !ok {
		return
	}

	entries, err := h.leaderboardService.Top(filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
