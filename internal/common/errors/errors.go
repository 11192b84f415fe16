// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Recommendation pipeline error codes.
const (
	// Validation (caller-visible, non-retryable)
	ErrCodeInvalidInput            ErrorCode = "INVALID_INPUT"
	ErrCodeInsufficientSubjects    ErrorCode = "INSUFFICIENT_SUBJECTS"
	ErrCodeResultsValidationFailed ErrorCode = "RESULTS_VALIDATION_FAILED"

	// Catalog / database (retryable technical)
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCatalogFetchFailed            ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeCatalogEmpty                  ErrorCode = "CATALOG_EMPTY"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout                  ErrorCode = "QUERY_TIMEOUT"
	ErrCodeRecommendationPersistFailed   ErrorCode = "RECOMMENDATION_PERSIST_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	// ML enhancement (degraded-mode: logged, never thrown to the process)
	ErrCodeMLServiceUnavailable ErrorCode = "ML_SERVICE_UNAVAILABLE"
	ErrCodeMLEnhancementTimeout ErrorCode = "ML_ENHANCEMENT_TIMEOUT"
	ErrCodeMLResponseMalformed  ErrorCode = "ML_RESPONSE_MALFORMED"

	// Notifications / response assembly
	ErrCodeNotificationSendFailed    ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeResponseTemplateNotFound  ErrorCode = "RESPONSE_TEMPLATE_NOT_FOUND"
	ErrCodeResponseValidationFailed  ErrorCode = "RESPONSE_VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError records job variables that could not be parsed into the
// worker's input type.
func NewInvalidInputError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientSubjectsError is the only validation failure surfaced to the caller:
// a result set must carry at least the given number of graded subjects.
func NewInsufficientSubjectsError(got, want int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientSubjects,
		Message:   fmt.Sprintf("Please provide at least %d subjects with grades", want),
		Details:   fmt.Sprintf("got %d subjects", got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultsValidationFailedError creates a non-retryable exam-results validation error.
func NewResultsValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultsValidationFailed,
		Message:   "Exam results validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchFailedError creates a retryable career-catalog read error.
func NewCatalogFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Failed to load career catalog",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogEmptyError signals an empty career catalog; nothing to score against.
func NewCatalogEmptyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogEmpty,
		Message:   "Career catalog is empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecommendationPersistFailedError creates a retryable persistence error.
func NewRecommendationPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecommendationPersistFailed,
		Message:   "Failed to persist recommendation record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Career catalog search error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Career catalog search timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMLServiceUnavailableError records an unreachable ML service. Degraded-mode:
// callers fall back to rule-based output instead of failing the job.
func NewMLServiceUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMLServiceUnavailable,
		Message:   "ML enhancement service unavailable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMLEnhancementTimeoutError records an ML call exceeding its deadline.
func NewMLEnhancementTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMLEnhancementTimeout,
		Message:   "ML enhancement timed out",
		Details:   "enhancement call exceeded timeout threshold",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMLResponseMalformedError records an undecodable ML service response.
func NewMLResponseMalformedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMLResponseMalformed,
		Message:   "ML enhancement response malformed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseTemplateNotFoundError creates a non-retryable template error.
func NewResponseTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseTemplateNotFound,
		Message:   "Response template not found in registry",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseValidationFailedError creates a non-retryable response validation error.
func NewResponseValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseValidationFailed,
		Message:   "Response payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical by
// convention so the process model reads the same identifiers).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeInsufficientSubjects:          "INSUFFICIENT_SUBJECTS",
	ErrCodeResultsValidationFailed:       "RESULTS_VALIDATION_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeCatalogFetchFailed:            "CATALOG_FETCH_FAILED",
	ErrCodeCatalogEmpty:                  "CATALOG_EMPTY",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeRecommendationPersistFailed:   "RECOMMENDATION_PERSIST_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeMLServiceUnavailable:          "ML_SERVICE_UNAVAILABLE",
	ErrCodeMLEnhancementTimeout:          "ML_ENHANCEMENT_TIMEOUT",
	ErrCodeMLResponseMalformed:           "ML_RESPONSE_MALFORMED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
	ErrCodeResponseTemplateNotFound:      "RESPONSE_TEMPLATE_NOT_FOUND",
	ErrCodeResponseValidationFailed:      "RESPONSE_VALIDATION_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeCatalogFetchFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeRecommendationPersistFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business/validation errors and ML degradation: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsDegradedModeCode reports whether a code belongs to the ML-enhancement
// degraded-mode family: recovered silently, never surfaced to the process.
func IsDegradedModeCode(code ErrorCode) bool {
	switch code {
	case ErrCodeMLServiceUnavailable, ErrCodeMLEnhancementTimeout, ErrCodeMLResponseMalformed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SUBJECTS") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "PERSIST"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "ML_"):
		return "ML"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "TEMPLATE") || strings.Contains(codeStr, "RESPONSE"):
		return "RESPONSE"
	default:
		return "OTHER"
	}
}
