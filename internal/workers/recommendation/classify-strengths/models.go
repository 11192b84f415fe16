// internal/workers/recommendation/classify-strengths/models.go
package classifystrengths

import "career-recommender-workers/internal/models"

type Input struct {
	LearnerID string             `json:"learnerId"`
	Results   models.ExamResults `json:"results"`
}

type Output struct {
	Strengths        []string           `json:"strengths"`
	CategoryAverages map[string]float64 `json:"categoryAverages"`
}
