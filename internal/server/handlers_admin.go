package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/profiles"
	"github.com/jonathan/resume-screener/internal/types"
)

// handleSearchCandidates ranks stored profiles against ?skills=a,b,c.
func (s *Server) handleSearchCandidates(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("skills")
	if strings.TrimSpace(raw) == "" {
		s.errorResponse(w, http.StatusBadRequest, "Please provide skills to search for.")
		return
	}

	candidates, err := s.profiles.Search(r.Context(), profiles.ParseSkillQuery(raw))
	if err != nil {
		s.failure(w, err)
		return
	}

	s.logger.Debug("candidate search",
		zap.String("skills", raw),
		zap.Int("results", len(candidates)))
	s.jsonResponse(w, http.StatusOK, types.CandidatesResponse{
		Success:    true,
		Message:    "Candidates retrieved successfully.",
		Candidates: candidates,
	})
}
