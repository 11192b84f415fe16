// internal/workers/infrastructure/build-recommendation-response/handler.go
package buildrecommendationresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"career-recommender-workers/internal/catalog"
	commonerrors "career-recommender-workers/internal/common/errors"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/metrics"
	"career-recommender-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "build-recommendation-response"

var (
	ErrTemplateNotFound         = errors.New("RESPONSE_TEMPLATE_NOT_FOUND")
	ErrResponseValidationFailed = errors.New("RESPONSE_VALIDATION_FAILED")
)

type templateCacheEntry struct {
	template *TemplateDefinition
	loadedAt time.Time
}

type Handler struct {
	config       *Config
	catalog      *catalog.Store
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
	cache        map[string]*templateCacheEntry
	mu           sync.RWMutex
}

func NewHandler(config *Config, store *catalog.Store, log logger.Logger) *Handler {
	scopedLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		catalog:      store,
		logger:       scopedLog,
		errorHandler: commonerrors.NewErrorHandler(scopedLog),
		cache:        make(map[string]*templateCacheEntry),
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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.convertToStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	display := make([]models.DisplayRecommendation, 0, len(input.Recommendations))
	for _, rec := range input.Recommendations {
		item := models.DisplayRecommendation{ScoredCareer: rec}

		// best effort: a missing catalog row keeps the scored fields only
		career, err := h.catalog.CareerByID(ctx, rec.CareerID)
		if err != nil {
			h.logger.Warn("career lookup failed, returning scored fields only", map[string]interface{}{
				"careerId": rec.CareerID,
				"error":    err,
			})
		} else {
			item.Title = career.Title
			item.Category = career.Category
			item.Description = career.Description
			item.Salary = career.Salary
			item.Institutions = career.Institutions
			item.JobProspects = career.JobProspects
		}
		display = append(display, item)
	}

	payload := ResponsePayload{
		RequestID: input.RequestID,
		Status:    "success",
		Data: ResponseData{
			StudentInfo: StudentInfo{
				MeanGrade:  input.Results.MeanGrade,
				MeanPoints: input.Results.MeanPoints,
				Strengths:  input.Strengths,
			},
			Recommendations: display,
			MLEnhanced:      input.MLEnhanced,
		},
		Metadata: ResponseMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   h.config.AppVersion,
		},
	}

	template, err := h.loadTemplate(h.config.TemplateID)
	if err != nil {
		return nil, err
	}
	if err := h.validatePayload(template.Schema, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseValidationFailed, err)
	}

	return &Output{Response: payload}, nil
}

func (h *Handler) loadTemplate(id string) (*TemplateDefinition, error) {
	h.mu.RLock()
	if entry, ok := h.cache[id]; ok && time.Since(entry.loadedAt) < h.config.CacheTTL {
		h.mu.RUnlock()
		return entry.template, nil
	}
	h.mu.RUnlock()

	registryBytes, err := os.ReadFile(h.config.TemplateRegistry)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var registry struct {
		Templates []TemplateDefinition `json:"templates"`
	}
	if err := json.Unmarshal(registryBytes, &registry); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	for _, t := range registry.Templates {
		if t.ID == id {
			h.mu.Lock()
			h.cache[id] = &templateCacheEntry{
				template: &t,
				loadedAt: time.Now(),
			}
			h.mu.Unlock()
			return &t, nil
		}
	}

	return nil, ErrTemplateNotFound
}

func (h *Handler) validatePayload(schemaMap map[string]interface{}, payload ResponsePayload) error {
	if len(schemaMap) == 0 {
		return nil
	}

	// round-trip through JSON so the document loader sees plain maps
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("response validation failed: %v", errs)
	}

	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) convertToStandardError(err error) *commonerrors.StandardError {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		return commonerrors.NewResponseTemplateNotFoundError(h.config.TemplateID)
	case errors.Is(err, ErrResponseValidationFailed):
		return commonerrors.NewResponseValidationFailedError(err.Error())
	default:
		return commonerrors.NewBusinessRuleError("Response assembly failed", err.Error())
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *commonerrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}
