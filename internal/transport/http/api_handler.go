package http

import (
	"encoding/json"
	"log"
	"net/http"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/domain"
)

// APIHandler serves the stateless JSON endpoints.
type APIHandler struct {
	service *app.AssessmentService
}

func NewAPIHandler(service *app.AssessmentService) *APIHandler {
	return &APIHandler{service: service}
}

type catalogResponse struct {
	Questions  []domain.Question `json:"questions"`
	Categories []domain.Category `json:"categories"`
}

type scoreRequest struct {
	Answers domain.AnswerSet `json:"answers"`
}

type scoreResponse struct {
	Results          domain.QuizResults      `json:"results"`
	LevelDescription string                  `json:"levelDescription"`
	Recommendations  []domain.Recommendation `json:"recommendations"`
}

// ServeCatalog handles GET /api/catalog.
func (h *APIHandler) ServeCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	catalog := h.service.Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{
		Questions:  catalog.Questions,
		Categories: catalog.Categories(),
	})
}

// ServeScore handles POST /api/score.
func (h *APIHandler) ServeScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	results, recs := h.service.Score(req.Answers)
	writeJSON(w, http.StatusOK, scoreResponse{
		Results:          results,
		LevelDescription: results.Level.Description(),
		Recommendations:  recs,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
