// internal/workers/recommendation/score-career-matches/handler.go
package scorecareermatches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"career-recommender-workers/internal/catalog"
	commonerrors "career-recommender-workers/internal/common/errors"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-career-matches"
)

var (
	ErrCatalogFetchFailed = errors.New("CATALOG_FETCH_FAILED")
	ErrCatalogEmpty       = errors.New("CATALOG_EMPTY")
)

type Handler struct {
	config       *Config
	catalog      *catalog.Store
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, store *catalog.Store, log logger.Logger) *Handler {
	scopedLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		catalog:      store,
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
	careers, err := h.catalog.AllCareers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogFetchFailed, err)
	}
	if len(careers) == 0 {
		return nil, ErrCatalogEmpty
	}

	recommendations := ScoreCatalog(input.Results, careers, h.config.MinMatchScore)

	h.logger.Info("careers scored", map[string]interface{}{
		"learnerId":     input.LearnerID,
		"careersScored": len(careers),
		"aboveCutoff":   len(recommendations),
	})

	return &Output{
		Recommendations: recommendations,
		CareersScored:   len(careers),
	}, nil
}

func convertToStandardError(err error) *commonerrors.StandardError {
	switch {
	case errors.Is(err, ErrCatalogEmpty):
		return commonerrors.NewCatalogEmptyError()
	case errors.Is(err, ErrCatalogFetchFailed):
		return commonerrors.NewCatalogFetchFailedError(err)
	default:
		return commonerrors.NewBusinessRuleError("Career scoring failed", err.Error())
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
