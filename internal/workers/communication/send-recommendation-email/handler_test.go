// internal/workers/communication/send-recommendation-email/handler_test.go
package sendrecommendationemail

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"career-recommender-workers/internal/catalog"
	commonerrors "career-recommender-workers/internal/common/errors"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   false,
		FromEmail:    "noreply@careerrecommender.co.ke",
		AWSRegion:    "eu-west-1",
		TopCareers:   3,
		Timeout:      30 * time.Second,
	}
}

func createTestInput() *Input {
	return &Input{
		LearnerID: "learner-1",
		Recommendations: []models.ScoredCareer{
			{CareerID: "career-1", Title: "Engineering", Match: 84},
			{CareerID: "career-2", Title: "Medicine", Match: 79},
			{CareerID: "career-3", Title: "Architecture", Match: 71},
			{CareerID: "career-4", Title: "Law", Match: 65},
		},
	}
}

func newTestHandler(t *testing.T, config *Config, sesMock SESService, snsMock SNSService) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// career description lookups are best effort; ErrNoRows keeps titles only
	store := catalog.NewStore(db, nil, 10*time.Minute, logger.NewNoOpLogger())

	return &Handler{
		config:       config,
		db:           db,
		catalog:      store,
		logger:       logger.NewNoOpLogger(),
		errorHandler: commonerrors.NewErrorHandler(logger.NewNoOpLogger()),
		sesClient:    sesMock,
		snsClient:    snsMock,
	}, mock
}

func expectContactLookup(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT email, phone, name FROM users WHERE id = \$1`).
		WithArgs("learner-1").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone", "name"}).
			AddRow("learner@example.com", "+254700000000", "Jane"))
}

func expectCareerLookups(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectQuery("SELECT id, title, category").
			WillReturnError(sql.ErrNoRows)
	}
}

func TestHandler_Execute_SendsTopThree(t *testing.T) {
	var captured *ses.SendEmailInput
	mockSES := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{}, nil
		},
	}

	handler, mock := newTestHandler(t, createTestConfig(), mockSES, nil)
	expectContactLookup(mock)
	expectCareerLookups(mock, 3)

	output := handler.Execute(context.Background(), createTestInput())

	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.NotificationID)

	require.NotNil(t, captured)
	assert.Equal(t, "learner@example.com", captured.Destination.ToAddresses[0])
	assert.Equal(t, "noreply@careerrecommender.co.ke", *captured.Source)

	body := *captured.Message.Body.Text.Data
	assert.Contains(t, body, "Hello Jane")
	assert.Contains(t, body, "Engineering (84% match)")
	assert.Contains(t, body, "Architecture (71% match)")
	// only the top three make the email
	assert.NotContains(t, body, "Law")
}

func TestHandler_Execute_SendFailureReportsFailedStatus(t *testing.T) {
	mockSES := &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses throttled")
		},
	}

	handler, mock := newTestHandler(t, createTestConfig(), mockSES, nil)
	expectContactLookup(mock)
	expectCareerLookups(mock, 3)

	output := handler.Execute(context.Background(), createTestInput())
	assert.Equal(t, StatusFailed, output.Status)
}

func TestHandler_Execute_LearnerNotFound(t *testing.T) {
	handler, mock := newTestHandler(t, createTestConfig(), nil, nil)
	mock.ExpectQuery(`SELECT email, phone, name FROM users WHERE id = \$1`).
		WithArgs("learner-1").
		WillReturnError(sql.ErrNoRows)

	output := handler.Execute(context.Background(), createTestInput())
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestHandler_Execute_Disabled(t *testing.T) {
	config := createTestConfig()
	config.EmailEnabled = false

	handler, _ := newTestHandler(t, config, nil, nil)

	output := handler.Execute(context.Background(), createTestInput())
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestHandler_Execute_NoRecommendations(t *testing.T) {
	handler, mock := newTestHandler(t, createTestConfig(), nil, nil)
	expectContactLookup(mock)

	output := handler.Execute(context.Background(), &Input{LearnerID: "learner-1"})
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestHandler_Execute_SMS(t *testing.T) {
	config := createTestConfig()
	config.SMSEnabled = true

	var captured *sns.PublishInput
	mockSES := &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
	mockSNS := &MockSNSService{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{}, nil
		},
	}

	handler, mock := newTestHandler(t, config, mockSES, mockSNS)
	expectContactLookup(mock)
	expectCareerLookups(mock, 3)

	output := handler.Execute(context.Background(), createTestInput())

	assert.Equal(t, StatusSent, output.Status)
	require.NotNil(t, captured)
	assert.Equal(t, "+254700000000", *captured.PhoneNumber)
	assert.Contains(t, *captured.Message, "Engineering")
}
