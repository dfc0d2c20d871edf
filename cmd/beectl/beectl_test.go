package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellingbee/internal/models"
)

func TestParseWordCSV(t *testing.T) {
	input := `# grade 3 list
necessary, needed, It is necessary to study.
rhythm

"separate","to divide, or set apart"
`
	reqs, err := parseWordCSV(strings.NewReader(input), 3, models.DifficultyHard)
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, "necessary", reqs[0].Word)
	assert.Equal(t, "needed", reqs[0].Definition)
	assert.Equal(t, "It is necessary to study.", reqs[0].Example)
	assert.Equal(t, "rhythm", reqs[1].Word)
	assert.Empty(t, reqs[1].Definition)
	assert.Equal(t, "to divide, or set apart", reqs[2].Definition)
	for _, req := range reqs {
		assert.Equal(t, models.Grade(3), req.Grade)
		assert.Equal(t, models.DifficultyHard, req.Difficulty)
	}
}

func TestParseWordCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "# nothing here\n\n", "no words"},
		{"too many columns", "a,b,c,d\n", "line 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWordCSV(strings.NewReader(tt.input), 1, models.DifficultyUnset)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPromptPassword(t *testing.T) {
	original := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = original })

	tests := []struct {
		name    string
		inputs  []string
		want    string
		wantErr string
	}{
		{"matching", []string{"hunter22", "hunter22"}, "hunter22", ""},
		{"mismatch", []string{"hunter22", "hunter23"}, "", "do not match"},
		{"blank", []string{"   "}, "", "must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			readPasswordFunc = func(int) ([]byte, error) {
				if calls >= len(tt.inputs) {
					return nil, errors.New("unexpected prompt")
				}
				calls++
				return []byte(tt.inputs[calls-1]), nil
			}

			var out bytes.Buffer
			got, err := promptPassword(&out)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Confirm password")
		})
	}
}

func TestRenderLeaderboard(t *testing.T) {
	var out bytes.Buffer
	renderLeaderboard(&out, nil)
	assert.Contains(t, out.String(), "No students")

	out.Reset()
	renderLeaderboard(&out, []models.LeaderboardEntry{
		{Rank: 1, Name: "Ada Lovelace", School: "Hillside", Grade: 5, TotalXP: 420, League: "Silver"},
		{Rank: 2, Name: "Alan Turing", School: "Hillside", Grade: 12, TotalXP: 90, League: "Paper"},
	})
	text := out.String()
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "Group 3")
	assert.Contains(t, text, "420")
	assert.Contains(t, text, "League")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"migrate", "create-admin", "export", "import", "seed-words", "leaderboard"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
