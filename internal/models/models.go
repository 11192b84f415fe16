// Package models holds the domain types shared across the recommendation
// pipeline workers.
package models

import "time"

// SubjectResult is one graded subject from a learner's exam submission.
type SubjectResult struct {
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
	Points  int    `json:"points,omitempty"`
}

// ExamResults is a learner's full result set. MeanGrade and MeanPoints are
// computed upstream at submission time and trusted by the scorer.
type ExamResults struct {
	Year       int             `json:"year"`
	Subjects   []SubjectResult `json:"subjects"`
	MeanGrade  string          `json:"meanGrade"`
	MeanPoints float64         `json:"meanPoints"`
}

// Career is one catalog entry. RequiredGrades is sparse: a subject absent
// from the map has no specific grade requirement.
type Career struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Category         string            `json:"category"`
	Description      string            `json:"description"`
	MinimumMeanGrade string            `json:"minimumMeanGrade"`
	KeySubjects      []string          `json:"keySubjects"`
	RequiredGrades   map[string]string `json:"requiredGrades,omitempty"`
	MarketDemand     string            `json:"marketDemand"`
	Salary           string            `json:"salary,omitempty"`
	Institutions     []string          `json:"institutions,omitempty"`
	JobProspects     []string          `json:"jobProspects,omitempty"`
}

// ScoredCareer is one career with its computed match score and reasons.
type ScoredCareer struct {
	CareerID               string   `json:"careerId"`
	Title                  string   `json:"title,omitempty"`
	Match                  int      `json:"match"`
	Reasons                []string `json:"reasons"`
	MLEnhanced             bool     `json:"mlEnhanced"`
	ImprovementSuggestions []string `json:"improvementSuggestions,omitempty"`
}

// Recommendation is the persisted record for one submission. A later
// submission for the same learner supersedes it.
type Recommendation struct {
	ID              string         `json:"id"`
	LearnerID       string         `json:"learnerId"`
	Results         ExamResults    `json:"results"`
	Strengths       []string       `json:"strengths"`
	Recommendations []ScoredCareer `json:"recommendations"`
	MLEnhanced      bool           `json:"mlEnhanced"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// DisplayRecommendation is a ScoredCareer populated with catalog reference
// data for the response payload.
type DisplayRecommendation struct {
	ScoredCareer
	Category     string   `json:"category,omitempty"`
	Description  string   `json:"description,omitempty"`
	Salary       string   `json:"salary,omitempty"`
	Institutions []string `json:"institutions,omitempty"`
	JobProspects []string `json:"jobProspects,omitempty"`
}
