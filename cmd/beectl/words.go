package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"spellingbee/internal/audio"
	"spellingbee/internal/config"
	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/service"
)

func newSeedWordsCmd() *cobra.Command {
	var (
		grade      int
		difficulty string
		withAudio  bool
	)

	cmd := &cobra.Command{
		Use:   "seed-words FILE",
		Short: "Append words to a grade from a CSV file (word,definition,example)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open word file: %w", err)
			}
			defer file.Close()

			reqs, err := parseWordCSV(file, models.Grade(grade), models.Difficulty(difficulty))
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			var generator audio.Generator
			if withAudio {
				cfg := config.Load()
				generator = audio.NewTTSService(filepath.Join(cfg.StaticFilesPath, "audio"), "/static/audio/")
			}

			wordService := service.NewWordService(repository.NewWordRepository(db), generator)
			added, err := wordService.AddBulk(context.Background(), reqs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d words to %s\n", len(added), models.Grade(grade).Label())
			return nil
		},
	}
	cmd.Flags().IntVar(&grade, "grade", 0, "grade to add the words to (required)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "difficulty for every word (Easy, Medium or Hard)")
	cmd.Flags().BoolVar(&withAudio, "audio", false, "fetch pronunciation clips while seeding")
	cmd.MarkFlagRequired("grade")
	return cmd
}

// parseWordCSV reads rows of word[,definition[,example]]. Blank lines and lines starting with # are skipped.
func parseWordCSV(r io.Reader, grade models.Grade, difficulty models.Difficulty) ([]service.WordRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	var reqs []service.WordRequest
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read word file: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) > 3 {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected at most 3 columns, got %d", line, len(record))
		}

		req := service.WordRequest{
			Word:       strings.TrimSpace(record[0]),
			Grade:      grade,
			Difficulty: difficulty,
		}
		if len(record) > 1 {
			req.Definition = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			req.Example = strings.TrimSpace(record[2])
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		return nil, errors.New("word file contains no words")
	}
	return reqs, nil
}
