// internal/workers/recommendation/ml-enhance-recommendations/handler_test.go
package mlenhancerecommendations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/ml"
	"career-recommender-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnhancer struct {
	result   *ml.EnhanceResult
	err      error
	lastReq  *ml.EnhanceRequest
	healthOK bool
}

func (f *fakeEnhancer) Enhance(_ context.Context, req *ml.EnhanceRequest) (*ml.EnhanceResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeEnhancer) HealthCheck(context.Context) error {
	if !f.healthOK {
		return ml.ErrServiceUnavailable
	}
	return nil
}

func ruleBased() []models.ScoredCareer {
	return []models.ScoredCareer{
		{CareerID: "career-1", Match: 84, Reasons: []string{"rule reason 1"}},
		{CareerID: "career-2", Match: 72, Reasons: []string{"rule reason 2"}},
		{CareerID: "career-3", Match: 61, Reasons: []string{"rule reason 3"}},
	}
}

func newHandlerWith(enhancer ml.Enhancer) *Handler {
	return NewHandler(LoadConfig(), enhancer, logger.NewNoOpLogger())
}

func TestHandler_Execute_Enhanced(t *testing.T) {
	enhancer := &fakeEnhancer{
		result: &ml.EnhanceResult{
			Success:    true,
			MLEnhanced: true,
			EnhancedRecommendations: []ml.EnhancedItem{
				{
					CareerID:               "career-1",
					MLEnhancedScore:        91,
					MLReasons:              []string{"ml reason"},
					ImprovementSuggestions: []string{"improve chemistry"},
				},
			},
		},
	}

	output := newHandlerWith(enhancer).Execute(context.Background(), &Input{
		LearnerID:       "learner-1",
		Recommendations: ruleBased(),
	})

	assert.True(t, output.MLEnhanced)
	require.Len(t, output.Recommendations, 3)

	assert.Equal(t, 91, output.Recommendations[0].Match)
	assert.True(t, output.Recommendations[0].MLEnhanced)
	assert.Equal(t, []string{"ml reason"}, output.Recommendations[0].Reasons)
	assert.Equal(t, []string{"improve chemistry"}, output.Recommendations[0].ImprovementSuggestions)

	// items the service did not return keep their rule-based fields
	assert.Equal(t, 72, output.Recommendations[1].Match)
	assert.False(t, output.Recommendations[1].MLEnhanced)
	assert.Equal(t, []string{"rule reason 2"}, output.Recommendations[1].Reasons)
}

func TestHandler_Execute_FallbackOnError(t *testing.T) {
	enhancer := &fakeEnhancer{err: errors.New("connection refused")}

	input := &Input{LearnerID: "learner-1", Recommendations: ruleBased()}
	output := newHandlerWith(enhancer).Execute(context.Background(), input)

	assert.False(t, output.MLEnhanced)
	assert.Equal(t, ruleBased(), output.Recommendations)
}

func TestHandler_Execute_FallbackMatchesNoopOutput(t *testing.T) {
	input := &Input{LearnerID: "learner-1", Recommendations: ruleBased()}

	failing := newHandlerWith(&fakeEnhancer{err: ml.ErrEnhanceTimeout}).
		Execute(context.Background(), input)
	disabled := newHandlerWith(ml.NoopEnhancer{}).
		Execute(context.Background(), input)

	assert.Equal(t, disabled, failing)
}

func TestHandler_Execute_ServiceDidNotEnhance(t *testing.T) {
	enhancer := &fakeEnhancer{
		result: &ml.EnhanceResult{Success: true, MLEnhanced: false},
	}

	output := newHandlerWith(enhancer).Execute(context.Background(), &Input{
		Recommendations: ruleBased(),
	})

	assert.False(t, output.MLEnhanced)
	assert.Equal(t, ruleBased(), output.Recommendations)
}

func TestHandler_Execute_ZeroScoreNotApplied(t *testing.T) {
	enhancer := &fakeEnhancer{
		result: &ml.EnhanceResult{
			Success:    true,
			MLEnhanced: true,
			EnhancedRecommendations: []ml.EnhancedItem{
				{CareerID: "career-1", MLEnhancedScore: 0, ImprovementSuggestions: []string{"tip"}},
			},
		},
	}

	output := newHandlerWith(enhancer).Execute(context.Background(), &Input{
		Recommendations: ruleBased(),
	})

	assert.False(t, output.MLEnhanced)
	assert.Equal(t, 84, output.Recommendations[0].Match)
	assert.Equal(t, []string{"tip"}, output.Recommendations[0].ImprovementSuggestions)
}

func TestHandler_Execute_SendsAtMostCandidateLimit(t *testing.T) {
	var many []models.ScoredCareer
	for i := 0; i < 30; i++ {
		many = append(many, models.ScoredCareer{CareerID: fmt.Sprintf("career-%02d", i), Match: 99 - i})
	}

	enhancer := &fakeEnhancer{result: &ml.EnhanceResult{Success: true, MLEnhanced: false}}
	output := newHandlerWith(enhancer).Execute(context.Background(), &Input{
		Recommendations: many,
	})

	require.NotNil(t, enhancer.lastReq)
	assert.Len(t, enhancer.lastReq.Recommendations, 20)
	// the full list still flows through
	assert.Len(t, output.Recommendations, 30)
}
