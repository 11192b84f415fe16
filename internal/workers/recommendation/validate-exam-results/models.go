// internal/workers/recommendation/validate-exam-results/models.go
package validateexamresults

import "career-recommender-workers/internal/models"

type Input struct {
	LearnerID string             `json:"learnerId"`
	Results   models.ExamResults `json:"results"`
}

type Output struct {
	LearnerID string             `json:"learnerId"`
	Results   models.ExamResults `json:"results"`
	Warnings  []string           `json:"warnings,omitempty"`
	Valid     bool               `json:"valid"`
}
