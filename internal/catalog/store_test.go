package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func careerRows() *sqlmock.Rows {
	keySubjects, _ := json.Marshal([]string{"Mathematics", "Physics"})
	requiredGrades, _ := json.Marshal(map[string]string{"Mathematics": "B"})
	institutions, _ := json.Marshal([]string{"University of Nairobi"})
	jobProspects, _ := json.Marshal([]string{"Civil Engineer"})

	return sqlmock.NewRows([]string{
		"id", "title", "category", "description", "minimum_mean_grade",
		"key_subjects", "required_grades", "market_demand", "salary",
		"institutions", "job_prospects",
	}).AddRow(
		"career-1", "Engineering", "Technical", "Build things", "B-",
		keySubjects, requiredGrades, "High", "KES 80,000",
		institutions, jobProspects,
	)
}

func TestAllCareers_CacheMiss(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient := setupRedis(t)

	mock.ExpectQuery("SELECT id, title, category").
		WillReturnRows(careerRows())

	store := NewStore(db, redisClient, 10*time.Minute, logger.NewNoOpLogger())

	careers, err := store.AllCareers(context.Background())
	require.NoError(t, err)
	require.Len(t, careers, 1)

	assert.Equal(t, "career-1", careers[0].ID)
	assert.Equal(t, "B-", careers[0].MinimumMeanGrade)
	assert.Equal(t, []string{"Mathematics", "Physics"}, careers[0].KeySubjects)
	assert.Equal(t, "B", careers[0].RequiredGrades["Mathematics"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllCareers_CacheHit(t *testing.T) {
	db, mock := setupMockDB(t)
	redisClient := setupRedis(t)

	cached, _ := json.Marshal([]models.Career{{ID: "career-2", Title: "Medicine"}})
	require.NoError(t, redisClient.Set(context.Background(), cacheKey, cached, time.Minute).Err())

	store := NewStore(db, redisClient, 10*time.Minute, logger.NewNoOpLogger())

	careers, err := store.AllCareers(context.Background())
	require.NoError(t, err)
	require.Len(t, careers, 1)
	assert.Equal(t, "career-2", careers[0].ID)

	// no query should have reached Postgres
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllCareers_NoRedis(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT id, title, category").
		WillReturnRows(careerRows())

	store := NewStore(db, nil, 10*time.Minute, logger.NewNoOpLogger())

	careers, err := store.AllCareers(context.Background())
	require.NoError(t, err)
	assert.Len(t, careers, 1)
}

func TestCareerByID(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT id, title, category").
		WithArgs("career-1").
		WillReturnRows(careerRows())

	store := NewStore(db, nil, 10*time.Minute, logger.NewNoOpLogger())

	career, err := store.CareerByID(context.Background(), "career-1")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", career.Title)
	assert.Equal(t, "High", career.MarketDemand)
}

func TestCareerByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT id, title, category").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	store := NewStore(db, nil, 10*time.Minute, logger.NewNoOpLogger())

	_, err := store.CareerByID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestInvalidate(t *testing.T) {
	db, _ := setupMockDB(t)
	redisClient := setupRedis(t)

	require.NoError(t, redisClient.Set(context.Background(), cacheKey, "[]", time.Minute).Err())

	store := NewStore(db, redisClient, 10*time.Minute, logger.NewNoOpLogger())
	require.NoError(t, store.Invalidate(context.Background()))

	_, err := redisClient.Get(context.Background(), cacheKey).Result()
	assert.Equal(t, redis.Nil, err)
}
