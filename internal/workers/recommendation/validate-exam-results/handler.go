// internal/workers/recommendation/validate-exam-results/handler.go
package validateexamresults

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	commonerrors "career-recommender-workers/internal/common/errors"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/metrics"
	"career-recommender-workers/internal/common/validation"
	"career-recommender-workers/internal/grades"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-exam-results"
)

var (
	ErrInsufficientSubjects = errors.New("INSUFFICIENT_SUBJECTS")
	ErrValidationFailed     = errors.New("RESULTS_VALIDATION_FAILED")
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scopedLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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
		h.failJob(client, job, h.convertToStandardError(&input, err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if len(input.Results.Subjects) < h.config.MinSubjects {
		return nil, fmt.Errorf("%w: please provide at least %d subjects with grades", ErrInsufficientSubjects, h.config.MinSubjects)
	}

	if result := validateStructure(input); !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(result.GetErrorMessages(), "; "))
	}

	// Unrecognized grades score zero downstream rather than failing the
	// request. Surface them as warnings so typos are at least visible.
	var warnings []string
	results := input.Results
	for i, subject := range results.Subjects {
		if !grades.IsValid(subject.Grade) {
			warnings = append(warnings, fmt.Sprintf("unrecognized grade %q for %s treated as no credit", subject.Grade, subject.Subject))
		}
		results.Subjects[i].Points = grades.PointsOf(subject.Grade)
	}

	if len(warnings) > 0 {
		h.logger.Warn("results contain unrecognized grades", map[string]interface{}{
			"learnerId": input.LearnerID,
			"warnings":  warnings,
		})
	}

	return &Output{
		LearnerID: input.LearnerID,
		Results:   results,
		Warnings:  warnings,
		Valid:     true,
	}, nil
}

func validateStructure(input *Input) *validation.ValidationResult {
	one := 1
	payload := map[string]interface{}{
		"year":      float64(input.Results.Year),
		"meanGrade": input.Results.MeanGrade,
	}

	schema := validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"year":      {Type: "number"},
			"meanGrade": {Type: "string", MinLength: &one},
		},
		Required:             []string{"year", "meanGrade"},
		AdditionalProperties: true,
	}

	result := validation.ValidateInput(payload, schema)
	if !result.Valid {
		return result
	}

	for i, subject := range input.Results.Subjects {
		if strings.TrimSpace(subject.Subject) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, validation.ValidationError{
				Field:   fmt.Sprintf("subjects[%d].subject", i),
				Message: "subject name must not be empty",
				Code:    "MIN_LENGTH_VIOLATION",
			})
		}
		if strings.TrimSpace(subject.Grade) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, validation.ValidationError{
				Field:   fmt.Sprintf("subjects[%d].grade", i),
				Message: "grade must not be empty",
				Code:    "MIN_LENGTH_VIOLATION",
			})
		}
	}

	return result
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

func (h *Handler) convertToStandardError(input *Input, err error) *commonerrors.StandardError {
	if errors.Is(err, ErrInsufficientSubjects) {
		return commonerrors.NewInsufficientSubjectsError(len(input.Results.Subjects), h.config.MinSubjects)
	}
	return commonerrors.NewResultsValidationFailedError(err.Error())
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *commonerrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
