// internal/workers/recommendation/ml-enhance-recommendations/handler.go
package mlenhancerecommendations

import (
	"context"
	"encoding/json"

	commonerrors "career-recommender-workers/internal/common/errors"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/metrics"
	"career-recommender-workers/internal/ml"
	"career-recommender-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "ml-enhance-recommendations"
)

type Handler struct {
	config       *Config
	enhancer     ml.Enhancer
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, enhancer ml.Enhancer, log logger.Logger) *Handler {
	scopedLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		enhancer:     enhancer,
		logger:       scopedLog,
		errorHandler: commonerrors.NewErrorHandler(scopedLog),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, commonerrors.NewInvalidInputError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	// Enhancement is best effort. Any failure degrades to the rule-based
	// list; it never fails the job.
	output := h.execute(ctx, &input)
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	candidates := input.Recommendations
	if len(candidates) > h.config.Candidates {
		candidates = candidates[:h.config.Candidates]
	}

	result, err := h.enhancer.Enhance(ctx, &ml.EnhanceRequest{
		Results:         input.Results,
		Recommendations: candidates,
	})
	if err != nil || !result.MLEnhanced {
		if err != nil {
			metrics.MLEnhancementFallbacks.Inc()
			h.logger.Warn("enhancement unavailable, keeping rule-based scores", map[string]interface{}{
				"learnerId": input.LearnerID,
				"error":     err,
			})
		}
		return &Output{
			Recommendations: input.Recommendations,
			MLEnhanced:      false,
		}
	}

	enhanced := make(map[string]ml.EnhancedItem, len(result.EnhancedRecommendations))
	for _, item := range result.EnhancedRecommendations {
		enhanced[item.CareerID] = item
	}

	merged := make([]models.ScoredCareer, len(input.Recommendations))
	anyEnhanced := false
	for i, rec := range input.Recommendations {
		merged[i] = rec
		item, ok := enhanced[rec.CareerID]
		if !ok {
			continue
		}
		// zero means the service did not re-score this item
		if item.MLEnhancedScore > 0 {
			merged[i].Match = item.MLEnhancedScore
			merged[i].MLEnhanced = true
			anyEnhanced = true
		}
		if len(item.MLReasons) > 0 {
			merged[i].Reasons = item.MLReasons
		}
		merged[i].ImprovementSuggestions = item.ImprovementSuggestions
	}

	h.logger.Info("recommendations enhanced", map[string]interface{}{
		"learnerId": input.LearnerID,
		"enhanced":  anyEnhanced,
		"items":     len(merged),
	})

	return &Output{
		Recommendations: merged,
		MLEnhanced:      anyEnhanced,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *commonerrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
