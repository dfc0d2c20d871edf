package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"spellingbee/internal/drill"
	"spellingbee/internal/models"
	"spellingbee/internal/reporting"
	"spellingbee/internal/repository"
	"spellingbee/internal/security"
	"spellingbee/internal/validation"
)

// maxStreakRetries bounds the compare-and-swap loop on last_practice_date
const maxStreakRetries = 3

// issuedWords remembers the one word each student may answer next
type issuedWords struct {
	mu      sync.Mutex
	pending map[int64]int64
}

func (iw *issuedWords) issue(studentID, wordID int64) {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	iw.pending[studentID] = wordID
}

// take consumes the pending word when it matches wordID
func (iw *issuedWords) take(studentID, wordID int64) bool {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	if got, ok := iw.pending[studentID]; !ok || got != wordID {
		return false
	}
	delete(iw.pending, studentID)
	return true
}

// DrillWord is the next word to practise. The spelling itself is withheld.
type DrillWord struct {
	WordID     int64             `json:"wordId"`
	Length     int               `json:"length"`
	Definition string            `json:"definition"`
	Example    string            `json:"example"`
	AudioURL   string            `json:"audioUrl,omitempty"`
	Image      string            `json:"image,omitempty"`
	Difficulty models.Difficulty `json:"difficulty,omitempty"`
}

// AnswerRequest is one typed drill answer
type AnswerRequest struct {
	WordID    int64  `json:"wordId" validate:"required,gt=0"`
	Typed     string `json:"typed"`
	ElapsedMs int    `json:"elapsedMs" validate:"gte=0"`
}

// AnswerResult reports the outcome and the student's new totals
type AnswerResult struct {
	Correct       bool         `json:"correct"`
	Word          string       `json:"word"`
	Points        int          `json:"points"`
	CoinsEarned   int          `json:"coinsEarned"`
	TotalXP       int          `json:"totalXp"`
	Coins         int          `json:"coins"`
	CurrentStreak int          `json:"currentStreak"`
	League        drill.League `json:"league"`
}

// DrillProfile is a student's own view of their progress
type DrillProfile struct {
	Student   models.Student              `json:"student"`
	League    drill.League                `json:"league"`
	Accuracy  *repository.StudentAccuracy `json:"accuracy"`
	Inventory []models.InventoryItem      `json:"inventory"`
	Shop      []drill.ShopItem            `json:"shop"`
}

// DrillHistory lists recent answers with an accuracy summary
type DrillHistory struct {
	Stats    []models.WordStat           `json:"stats"`
	Accuracy *repository.StudentAccuracy `json:"accuracy"`
}

// PurchaseResult is returned after buying a shop item
type PurchaseResult struct {
	Item      drill.ShopItem         `json:"item"`
	Coins     int                    `json:"coins"`
	Inventory []models.InventoryItem `json:"inventory"`
}

// DrillService runs student practice: login, weighted word selection, rewards and the shop
type DrillService struct {
	studentRepo   *repository.StudentRepository
	wordRepo      *repository.WordRepository
	statsRepo     *repository.StatsRepository
	inventoryRepo *repository.InventoryRepository
	tokens        *security.TokenIssuer
	issued        *issuedWords
	now           func() time.Time
	intn          drill.Intn
}

// NewDrillService creates a drill service
func NewDrillService(studentRepo *repository.StudentRepository, wordRepo *repository.WordRepository, statsRepo *repository.StatsRepository, inventoryRepo *repository.InventoryRepository, tokens *security.TokenIssuer) *DrillService {
	return &DrillService{
		studentRepo:   studentRepo,
		wordRepo:      wordRepo,
		statsRepo:     statsRepo,
		inventoryRepo: inventoryRepo,
		tokens:        tokens,
		issued:        &issuedWords{pending: make(map[int64]int64)},
		now:           time.Now,
		intn:          rand.IntN,
	}
}

// Login checks a student's username and practice code and issues a bearer token
func (s *DrillService) Login(username, password string) (string, *models.Student, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	student, err := s.studentRepo.GetStudentByUsername(username)
	if err != nil {
		return "", nil, storeError("get student", err)
	}
	if student == nil || subtle.ConstantTimeCompare([]byte(student.Password), []byte(strings.TrimSpace(password))) != 1 {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(security.KindStudent, student.ID)
	if err != nil {
		return "", nil, err
	}

	public := student.Public()
	return token, &public, nil
}

// Authenticate resolves a student bearer token
func (s *DrillService) Authenticate(token string) (int64, error) {
	claims, err := s.tokens.Parse(token, security.KindStudent)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	id, err := claims.SubjectID()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return id, nil
}

func (s *DrillService) student(id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetStudentByID(id)
	if err != nil {
		return nil, storeError("get student", err)
	}
	if student == nil {
		return nil, notFound("student", id)
	}
	return student, nil
}

// Next picks the next practice word for a student from their grade's list
func (s *DrillService) Next(studentID int64) (*DrillWord, error) {
	student, err := s.student(studentID)
	if err != nil {
		return nil, err
	}

	words, err := s.wordRepo.ListByGrade(student.Grade)
	if err != nil {
		return nil, storeError("list words", err)
	}
	if len(words) == 0 {
		return nil, notFound("words for grade", student.Grade.Label())
	}

	history, err := s.statsRepo.RecentForStudent(studentID, drill.HistoryLimit)
	if err != nil {
		return nil, storeError("load history", err)
	}

	word, ok := drill.Pick(words, history, s.intn)
	if !ok {
		return nil, notFound("words for grade", student.Grade.Label())
	}
	s.issued.issue(studentID, word.ID)

	return &DrillWord{
		WordID:     word.ID,
		Length:     len([]rune(word.Word)),
		Definition: word.Definition,
		Example:    word.Example,
		AudioURL:   word.AudioURL,
		Image:      word.Image,
		Difficulty: word.Difficulty,
	}, nil
}

// Answer grades a typed answer, records it and grants rewards. Only the word
// last returned by Next is accepted, once.
func (s *DrillService) Answer(studentID int64, req AnswerRequest) (*AnswerResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	student, err := s.student(studentID)
	if err != nil {
		return nil, err
	}
	if !s.issued.take(studentID, req.WordID) {
		return nil, ErrWordNotIssued
	}

	word, err := s.wordRepo.GetWord(req.WordID)
	if err != nil {
		return nil, storeError("get word", err)
	}
	if word == nil {
		return nil, notFound("word", req.WordID)
	}

	correct := strings.EqualFold(strings.TrimSpace(req.Typed), word.Word)
	points := drill.Points(word.Difficulty, req.ElapsedMs, correct)

	s.recordStat(&models.WordStat{
		StudentID: studentID,
		WordID:    word.ID,
		Word:      word.Word,
		Correct:   correct,
		ElapsedMs: req.ElapsedMs,
		Points:    points,
		CreatedAt: s.now(),
	})

	result := &AnswerResult{Correct: correct, Word: word.Word, Points: points}
	if correct {
		result.CoinsEarned = drill.CoinsPerCorrect
		if err := s.studentRepo.AddRewards(studentID, points, drill.CoinsPerCorrect); err != nil {
			return nil, storeError("add rewards", err)
		}
	}

	if err := s.advanceStreak(student); err != nil {
		return nil, err
	}

	updated, err := s.student(studentID)
	if err != nil {
		return nil, err
	}
	result.TotalXP = updated.TotalXP
	result.Coins = updated.Coins
	result.CurrentStreak = updated.CurrentStreak
	result.League = drill.LeagueFor(updated.TotalXP)
	return result, nil
}

// recordStat stores a drill answer. Failures are logged and reported but never block the answer.
func (s *DrillService) recordStat(stat *models.WordStat) {
	if err := s.statsRepo.RecordStat(stat); err != nil {
		reporting.Error(fmt.Sprintf("Warning: failed to record stat for student %d", stat.StudentID), err, map[string]interface{}{
			"student_id": stat.StudentID,
			"word_id":    stat.WordID,
		})
	}
}

// advanceStreak moves the daily streak forward, retrying when a concurrent answer won the race
func (s *DrillService) advanceStreak(student *models.Student) error {
	today := s.now()
	for attempt := 0; attempt < maxStreakRetries; attempt++ {
		streak, changed := drill.NextStreak(student.CurrentStreak, student.LastPracticeDate, today)
		if !changed {
			return nil
		}

		ok, err := s.studentRepo.UpdateStreak(student.ID, student.LastPracticeDate, today.Format(drill.DateLayout), streak)
		if err != nil {
			return storeError("update streak", err)
		}
		if ok {
			return nil
		}

		student, err = s.student(student.ID)
		if err != nil {
			return err
		}
	}
	log.Printf("Warning: streak for student %d not updated after %d attempts", student.ID, maxStreakRetries)
	return nil
}

// Profile returns a student's totals, league, accuracy and inventory
func (s *DrillService) Profile(studentID int64) (*DrillProfile, error) {
	student, err := s.student(studentID)
	if err != nil {
		return nil, err
	}

	accuracy, err := s.statsRepo.AccuracyForStudent(studentID)
	if err != nil {
		return nil, storeError("get accuracy", err)
	}

	inventory, err := s.inventoryRepo.ListInventory(studentID)
	if err != nil {
		return nil, storeError("list inventory", err)
	}

	return &DrillProfile{
		Student:   student.Public(),
		League:    drill.LeagueFor(student.TotalXP),
		Accuracy:  accuracy,
		Inventory: inventory,
		Shop:      drill.Catalog(),
	}, nil
}

// History returns up to limit recent answers, newest first
func (s *DrillService) History(studentID int64, limit int) (*DrillHistory, error) {
	if limit <= 0 || limit > drill.HistoryLimit {
		limit = 50
	}

	stats, err := s.statsRepo.RecentForStudent(studentID, limit)
	if err != nil {
		return nil, storeError("load history", err)
	}
	accuracy, err := s.statsRepo.AccuracyForStudent(studentID)
	if err != nil {
		return nil, storeError("get accuracy", err)
	}
	return &DrillHistory{Stats: stats, Accuracy: accuracy}, nil
}

// Purchase spends BeeCoins on a shop item
func (s *DrillService) Purchase(studentID int64, itemKey string) (*PurchaseResult, error) {
	item, ok := drill.LookupItem(itemKey)
	if !ok {
		return nil, notFound("shop item", itemKey)
	}

	err := s.inventoryRepo.Purchase(studentID, item.Key, item.Price)
	if errors.Is(err, repository.ErrInsufficientCoins) {
		return nil, ErrInsufficientCoins
	}
	if err != nil {
		return nil, storeError("purchase item", err)
	}

	student, err := s.student(studentID)
	if err != nil {
		return nil, err
	}
	inventory, err := s.inventoryRepo.ListInventory(studentID)
	if err != nil {
		return nil, storeError("list inventory", err)
	}

	log.Printf("Student %d bought %s for %d coins", studentID, item.Key, item.Price)
	return &PurchaseResult{Item: item, Coins: student.Coins, Inventory: inventory}, nil
}
