// internal/workers/recommendation/score-career-matches/handler_test.go
package scorecareermatches

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"career-recommender-workers/internal/catalog"
	commonerrors "career-recommender-workers/internal/common/errors"
	"career-recommender-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func catalogRows(t *testing.T) *sqlmock.Rows {
	keySubjects, _ := json.Marshal([]string{"Mathematics", "Physics", "Chemistry"})
	institutions, _ := json.Marshal([]string{})
	jobProspects, _ := json.Marshal([]string{})

	rows := sqlmock.NewRows([]string{
		"id", "title", "category", "description", "minimum_mean_grade",
		"key_subjects", "required_grades", "market_demand", "salary",
		"institutions", "job_prospects",
	})
	rows.AddRow("career-eng", "Engineering", "Technical", "Build things", "C+",
		keySubjects, []byte("null"), "High", nil, institutions, jobProspects)
	rows.AddRow("career-hard", "Astrophysics", "Sciences", "Stars", "A",
		keySubjects, []byte("null"), "Low", nil, institutions, jobProspects)
	return rows
}

func newTestHandler(t *testing.T, mockRows *sqlmock.Rows) (*Handler, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	if mockRows != nil {
		mock.ExpectQuery("SELECT id, title, category").WillReturnRows(mockRows)
	}

	store := catalog.NewStore(db, setupRedis(t), 10*time.Minute, logger.NewNoOpLogger())
	return NewHandler(LoadConfig(), store, logger.NewNoOpLogger()), mock
}

func TestHandler_Execute(t *testing.T) {
	handler, mock := newTestHandler(t, catalogRows(t))

	output, err := handler.Execute(context.Background(), &Input{
		LearnerID: "learner-1",
		Results:   strongLearner(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.CareersScored)
	require.Len(t, output.Recommendations, 1)
	assert.Equal(t, "career-eng", output.Recommendations[0].CareerID)
	assert.Equal(t, 84, output.Recommendations[0].Match)
	assert.False(t, output.Recommendations[0].MLEnhanced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyCatalog(t *testing.T) {
	rows := sqlmock.NewRows([]string{
		"id", "title", "category", "description", "minimum_mean_grade",
		"key_subjects", "required_grades", "market_demand", "salary",
		"institutions", "job_prospects",
	})
	handler, _ := newTestHandler(t, rows)

	_, err := handler.Execute(context.Background(), &Input{Results: strongLearner()})
	assert.ErrorIs(t, err, ErrCatalogEmpty)
}

func TestHandler_Execute_CatalogFetchError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT id, title, category").WillReturnError(sql.ErrConnDone)

	store := catalog.NewStore(db, setupRedis(t), 10*time.Minute, logger.NewNoOpLogger())
	handler := NewHandler(LoadConfig(), store, logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), &Input{Results: strongLearner()})
	assert.ErrorIs(t, err, ErrCatalogFetchFailed)
}

func TestConvertToStandardError(t *testing.T) {
	assert.Equal(t, commonerrors.ErrCodeCatalogEmpty, convertToStandardError(ErrCatalogEmpty).Code)
	assert.Equal(t, commonerrors.ErrCodeCatalogFetchFailed, convertToStandardError(ErrCatalogFetchFailed).Code)
	assert.Equal(t, commonerrors.ErrorCode("BUSINESS_RULE_VIOLATION"), convertToStandardError(context.DeadlineExceeded).Code)
}

func TestConvertToStandardError_RetryCounts(t *testing.T) {
	assert.Equal(t, 3, commonerrors.GetRetryCount(convertToStandardError(ErrCatalogFetchFailed).Code))
	assert.Equal(t, 0, commonerrors.GetRetryCount(convertToStandardError(ErrCatalogEmpty).Code))
}
