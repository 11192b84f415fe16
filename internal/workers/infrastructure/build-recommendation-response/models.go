// internal/workers/infrastructure/build-recommendation-response/models.go
package buildrecommendationresponse

import "career-recommender-workers/internal/models"

type Input struct {
	RequestID        string                `json:"requestId"`
	LearnerID        string                `json:"learnerId"`
	Results          models.ExamResults    `json:"results"`
	Strengths        []string              `json:"strengths"`
	Recommendations  []models.ScoredCareer `json:"recommendations"`
	MLEnhanced       bool                  `json:"mlEnhanced"`
	RecommendationID string                `json:"recommendationId"`
}

type Output struct {
	Response ResponsePayload `json:"response"`
}

type ResponsePayload struct {
	RequestID string           `json:"requestId"`
	Status    string           `json:"status"`
	Data      ResponseData     `json:"data"`
	Metadata  ResponseMetadata `json:"metadata"`
}

type ResponseData struct {
	StudentInfo     StudentInfo                    `json:"studentInfo"`
	Recommendations []models.DisplayRecommendation `json:"recommendations"`
	MLEnhanced      bool                           `json:"mlEnhanced"`
}

type StudentInfo struct {
	MeanGrade  string   `json:"meanGrade"`
	MeanPoints float64  `json:"meanPoints"`
	Strengths  []string `json:"strengths"`
}

type ResponseMetadata struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// TemplateDefinition is one entry of the response template registry file.
type TemplateDefinition struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Schema  map[string]interface{} `json:"schema"`
	Version string                 `json:"version"`
}
