package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/service"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTop    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleSubtle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newLeaderboardCmd() *cobra.Command {
	var (
		grade    int
		schoolID int64
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the drill leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			leaderboardService := service.NewLeaderboardService(repository.NewStudentRepository(db))
			entries, err := leaderboardService.Top(repository.StudentFilter{
				Grade:    models.Grade(grade),
				SchoolID: schoolID,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			renderLeaderboard(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&grade, "grade", 0, "only this grade")
	cmd.Flags().Int64Var(&schoolID, "school", 0, "only this school id")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of rows")
	return cmd
}

func renderLeaderboard(w io.Writer, entries []models.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, styleSubtle.Render("No students on the leaderboard yet"))
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("#", "Student", "School", "Grade", "XP", "League").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})

	for _, e := range entries {
		name := e.Name
		if e.Rank == 1 {
			name = styleTop.Render(name)
		}
		t.Row(
			strconv.Itoa(e.Rank),
			name,
			e.School,
			e.Grade.Label(),
			strconv.Itoa(e.TotalXP),
			e.League,
		)
	}
	fmt.Fprintln(w, t.Render())
}
