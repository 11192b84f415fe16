// internal/workers/recommendation/persist-recommendation/models.go
package persistrecommendation

import "career-recommender-workers/internal/models"

type Input struct {
	LearnerID       string                `json:"learnerId"`
	Results         models.ExamResults    `json:"results"`
	Strengths       []string              `json:"strengths"`
	Recommendations []models.ScoredCareer `json:"recommendations"`
	MLEnhanced      bool                  `json:"mlEnhanced"`
}

type Output struct {
	RecommendationID string                `json:"recommendationId"`
	Recommendations  []models.ScoredCareer `json:"recommendations"`
	CreatedAt        string                `json:"createdAt"`
}
