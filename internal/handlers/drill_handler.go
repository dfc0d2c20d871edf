package handlers

import (
	"net/http"

	"spellingbee/internal/models"
	"spellingbee/internal/service"
)

// DrillHandler serves student practice over bearer tokens
type DrillHandler struct {
	drillService *service.DrillService
}

// NewDrillHandler creates a new drill handler
func NewDrillHandler(drillService *service.DrillService) *DrillHandler {
	return &DrillHandler{drillService: drillService}
}

type drillLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type drillLoginResponse struct {
	Token   string          `json:"token"`
	Student *models.Student `json:"student"`
}

// Login exchanges a username and practice code for a token
func (h *DrillHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req drillLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, student, err := h.drillService.Login(req.Username, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, drillLoginResponse{Token: token, Student: student})
}

// Next returns the next practice word without its spelling
func (h *DrillHandler) Next(w http.ResponseWriter, r *http.Request) {
	word, err := h.drillService.Next(studentFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, word)
}

// Answer grades a typed answer
func (h *DrillHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req service.AnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.drillService.Answer(studentFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Profile returns the student's totals, league and inventory
func (h *DrillHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.drillService.Profile(studentFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// History returns recent answers for ?limit=
func (h *DrillHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	history, err := h.drillService.History(studentFromContext(r.Context()), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Purchase buys a shop item with BeeCoins
func (h *DrillHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	result, err := h.drillService.Purchase(studentFromContext(r.Context()), r.PathValue("item"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
