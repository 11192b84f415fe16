// internal/workers/recommendation/persist-recommendation/handler.go
package persistrecommendation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonerrors "career-recommender-workers/internal/common/errors"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "persist-recommendation"
)

var (
	ErrPersistFailed = errors.New("RECOMMENDATION_PERSIST_FAILED")
)

type Handler struct {
	config       *Config
	db           *sql.DB
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scopedLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, convertToStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	recommendations := input.Recommendations
	if len(recommendations) > h.config.MaxRecommendations {
		recommendations = recommendations[:h.config.MaxRecommendations]
	}

	recID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	resultsJSON, err := json.Marshal(input.Results)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal results: %v", ErrPersistFailed, err)
	}
	strengthsJSON, err := json.Marshal(input.Strengths)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal strengths: %v", ErrPersistFailed, err)
	}
	recommendationsJSON, err := json.Marshal(recommendations)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal recommendations: %v", ErrPersistFailed, err)
	}

	// A new row per submission; readers take the latest row per learner,
	// so a re-submission supersedes rather than merges (last write wins).
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO recommendations (
			id, learner_id, results, strengths, recommendations,
			ml_enhanced, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		recID,
		input.LearnerID,
		resultsJSON,
		strengthsJSON,
		recommendationsJSON,
		input.MLEnhanced,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrPersistFailed, err)
	}

	// Audit entry is non-critical; log and continue on failure.
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"learnerId":  input.LearnerID,
		"count":      len(recommendations),
		"mlEnhanced": input.MLEnhanced,
	})
	if err != nil {
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"recommendations_generated",
		"recommendation",
		recID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":            err,
			"recommendationId": recID,
		})
	}

	metrics.RecommendationsGenerated.WithLabelValues(fmt.Sprintf("%t", input.MLEnhanced)).Inc()

	h.logger.Info("recommendation persisted", map[string]interface{}{
		"recommendationId": recID,
		"learnerId":        input.LearnerID,
		"count":            len(recommendations),
		"mlEnhanced":       input.MLEnhanced,
	})

	return &Output{
		RecommendationID: recID,
		Recommendations:  recommendations,
		CreatedAt:        createdAt,
	}, nil
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

func convertToStandardError(err error) *commonerrors.StandardError {
	if errors.Is(err, ErrPersistFailed) {
		return commonerrors.NewRecommendationPersistFailedError(err)
	}
	return commonerrors.NewBusinessRuleError("Recommendation persistence failed", err.Error())
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *commonerrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
