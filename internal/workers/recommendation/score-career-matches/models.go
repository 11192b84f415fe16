// internal/workers/recommendation/score-career-matches/models.go
package scorecareermatches

import "career-recommender-workers/internal/models"

type Input struct {
	LearnerID string             `json:"learnerId"`
	Results   models.ExamResults `json:"results"`
}

type Output struct {
	Recommendations []models.ScoredCareer `json:"recommendations"`
	CareersScored   int                   `json:"careersScored"`
}
