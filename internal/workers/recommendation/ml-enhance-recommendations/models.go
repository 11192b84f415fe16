// internal/workers/recommendation/ml-enhance-recommendations/models.go
package mlenhancerecommendations

import "career-recommender-workers/internal/models"

type Input struct {
	LearnerID       string                `json:"learnerId"`
	Results         models.ExamResults    `json:"results"`
	Recommendations []models.ScoredCareer `json:"recommendations"`
}

type Output struct {
	Recommendations []models.ScoredCareer `json:"recommendations"`
	MLEnhanced      bool                  `json:"mlEnhanced"`
}
