// Package ml defines the optional enhancement boundary. The scoring pipeline
// must produce identical output whether the enhancer is disabled, unreachable
// or returning garbage; only the mlEnhanced flag may differ.
package ml

import (
	"context"

	"career-recommender-workers/internal/models"
)

// EnhanceRequest carries the learner profile and the rule-based top
// candidates to the enhancement service.
type EnhanceRequest struct {
	Results         models.ExamResults    `json:"results"`
	Recommendations []models.ScoredCareer `json:"recommendations"`
}

// EnhancedItem mirrors one entry of the service's enhanced_recommendations
// array. MLEnhancedScore of 0 means the item was not re-scored.
type EnhancedItem struct {
	CareerID               string   `json:"careerId"`
	Match                  int      `json:"match"`
	Reasons                []string `json:"reasons"`
	MLEnhancedScore        int      `json:"ml_enhanced_score"`
	MLReasons              []string `json:"ml_reasons"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

// EnhanceResult is the service response envelope.
type EnhanceResult struct {
	Success                 bool           `json:"success"`
	EnhancedRecommendations []EnhancedItem `json:"enhanced_recommendations"`
	MLEnhanced              bool           `json:"ml_enhanced"`
}

// Enhancer is the capability interface the orchestration depends on.
// Implementations must never block beyond the context deadline.
type Enhancer interface {
	Enhance(ctx context.Context, req *EnhanceRequest) (*EnhanceResult, error)
	HealthCheck(ctx context.Context) error
}

// NoopEnhancer is the pass-through used when enhancement is disabled.
// It reports the input back unchanged with MLEnhanced false.
type NoopEnhancer struct{}

func (NoopEnhancer) Enhance(_ context.Context, req *EnhanceRequest) (*EnhanceResult, error) {
	items := make([]EnhancedItem, len(req.Recommendations))
	for i, rec := range req.Recommendations {
		items[i] = EnhancedItem{
			CareerID: rec.CareerID,
			Match:    rec.Match,
			Reasons:  rec.Reasons,
		}
	}
	return &EnhanceResult{
		Success:                 true,
		EnhancedRecommendations: items,
		MLEnhanced:              false,
	}, nil
}

func (NoopEnhancer) HealthCheck(context.Context) error {
	return nil
}
