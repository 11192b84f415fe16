// internal/workers/communication/send-recommendation-email/models.go
package sendrecommendationemail

import "career-recommender-workers/internal/models"

type Input struct {
	LearnerID       string                `json:"learnerId"`
	Recommendations []models.ScoredCareer `json:"recommendations"`
	MLEnhanced      bool                  `json:"mlEnhanced"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
