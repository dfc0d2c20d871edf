package service

import (
	"spellingbee/internal/drill"
	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/validation"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 500
)

// LeaderboardService ranks students by XP
type LeaderboardService struct {
	studentRepo *repository.StudentRepository
}

// NewLeaderboardService creates a leaderboard service
func NewLeaderboardService(studentRepo *repository.StudentRepository) *LeaderboardService {
	return &LeaderboardService{studentRepo: studentRepo}
}

// Top returns the highest-XP students for the filter with rank and league
func (s *LeaderboardService) Top(filter repository.StudentFilter) ([]models.LeaderboardEntry, error) {
	if filter.Grade != 0 {
		if err := validation.Field("grade", filter.Grade, "grade"); err != nil {
			return nil, err
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLeaderboardLimit
	}
	if filter.Limit > maxLeaderboardLimit {
		filter.Limit = maxLeaderboardLimit
	}

	students, err := s.studentRepo.Leaderboard(filter)
	if err != nil {
		return nil, storeError("load leaderboard", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(students))
	for i, st := range students {
		entries = append(entries, models.LeaderboardEntry{
			Rank:      i + 1,
			StudentID: st.ID,
			Name:      st.FullName(),
			School:    st.School,
			Grade:     st.Grade,
			TotalXP:   st.TotalXP,
			League:    string(drill.LeagueFor(st.TotalXP)),
		})
	}
	return entries, nil
}
