// internal/workers/communication/send-recommendation-email/handler.go
package sendrecommendationemail

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"career-recommender-workers/internal/catalog"
	commonerrors "career-recommender-workers/internal/common/errors"
	commonaws "career-recommender-workers/internal/common/aws"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/metrics"
	"career-recommender-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-recommendation-email"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	db           *sql.DB
	catalog      *catalog.Store
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
	sesClient    SESService
	snsClient    SNSService
}

func NewHandler(config *Config, db *sql.DB, store *catalog.Store, log logger.Logger) (*Handler, error) {
	ctx := context.Background()

	sesClient, err := commonaws.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SES client: %w", err)
	}
	snsClient, err := commonaws.NewSNSClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SNS client: %w", err)
	}

	scopedLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		catalog:      store,
		logger:       scopedLog,
		errorHandler: commonerrors.NewErrorHandler(scopedLog),
		sesClient:    sesClient,
		snsClient:    snsClient,
	}, nil
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

	// The email is best effort: a send failure completes the job with
	// status "failed" rather than failing the recommendation flow.
	output := h.execute(ctx, &input)
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	if !h.config.EmailEnabled && !h.config.SMSEnabled {
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}
	}

	email, phone, name, err := h.getLearnerContact(ctx, input.LearnerID)
	if err != nil {
		h.logger.Warn("learner contact not found", map[string]interface{}{
			"learnerId": input.LearnerID,
			"error":     err,
		})
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}
	}

	topCareers := input.Recommendations
	if len(topCareers) > h.config.TopCareers {
		topCareers = topCareers[:h.config.TopCareers]
	}
	if len(topCareers) == 0 {
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}
	}

	subject, body := h.buildEmail(ctx, name, topCareers)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && email != "" {
		if err := h.sendEmail(ctx, email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": email,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}
		}
		emailSent = true
	}

	if h.config.SMSEnabled && phone != "" {
		message := fmt.Sprintf("Your top career match is %s (%d%% match). Check your email for the full list.",
			topCareers[0].Title, topCareers[0].Match)
		if err := h.sendSMS(ctx, phone, message); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": phone,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	h.logger.Info("recommendation notification processed", map[string]interface{}{
		"learnerId": input.LearnerID,
		"status":    status,
		"careers":   len(topCareers),
	})

	return &Output{NotificationID: notificationID, Status: status, SentAt: sentAt}
}

func (h *Handler) getLearnerContact(ctx context.Context, learnerID string) (string, string, string, error) {
	var email, phone, name string
	err := h.db.QueryRowContext(ctx,
		`SELECT email, phone, name FROM users WHERE id = $1`, learnerID).
		Scan(&email, &phone, &name)
	return email, phone, name, err
}

func (h *Handler) buildEmail(ctx context.Context, name string, topCareers []models.ScoredCareer) (string, string) {
	subject := "Your Career Recommendations"

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	b.WriteString("Based on your exam results, here are your top career matches:\n\n")

	for i, rec := range topCareers {
		title := rec.Title
		description := ""
		if career, err := h.catalog.CareerByID(ctx, rec.CareerID); err == nil {
			title = career.Title
			description = career.Description
		}
		fmt.Fprintf(&b, "%d. %s (%d%% match)\n", i+1, title, rec.Match)
		if description != "" {
			fmt.Fprintf(&b, "   %s\n", description)
		}
		b.WriteString("\n")
	}

	b.WriteString("Log in to view the full list of recommendations.\n")
	return subject, b.String()
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
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
