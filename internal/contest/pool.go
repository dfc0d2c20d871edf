package contest

import (
	"strings"

	"spellingbee/internal/models"
)

// buildPool narrows the grade's ordered word list to the configured range.
// min and max are 1-based and inclusive; zero means unbounded.
func buildPool(words []models.WordEntry, min, max int) ([]models.WordEntry, error) {
	if len(words) == 0 {
		return nil, invalid("no words available for this grade")
	}
	if min <= 0 && max <= 0 {
		return words, nil
	}

	lo := min
	if lo <= 0 {
		lo = 1
	}
	hi := max
	if hi <= 0 || hi > len(words) {
		hi = len(words)
	}
	if lo > hi {
		return nil, invalid("word range %d-%d is empty for a list of %d words", min, max, len(words))
	}

	return words[lo-1 : hi], nil
}

// excludeAttempted drops words already attempted in this contest.
// When nothing is left the unfiltered pool is returned.
func excludeAttempted(pool []models.WordEntry, attempts []models.Attempt) []models.WordEntry {
	usedIDs := make(map[int64]bool)
	usedText := make(map[string]bool)
	for _, a := range attempts {
		if a.Result == models.ResultSkipped {
			continue
		}
		if a.WordID != 0 {
			usedIDs[a.WordID] = true
		}
		usedText[strings.ToLower(a.WordText)] = true
	}

	filtered := make([]models.WordEntry, 0, len(pool))
	for _, w := range pool {
		if w.ID != 0 && usedIDs[w.ID] {
			continue
		}
		if w.ID == 0 && usedText[strings.ToLower(w.Word)] {
			continue
		}
		filtered = append(filtered, w)
	}

	if len(filtered) == 0 {
		return pool
	}
	return filtered
}

// IsCorrect applies the contest rule: exact spelling ignoring case and
// surrounding space, with the word announced before and after.
func IsCorrect(typed, target string, opened, closed bool) bool {
	return strings.ToLower(strings.TrimSpace(typed)) == strings.ToLower(target) && opened && closed
}
