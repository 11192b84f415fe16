// internal/workers/infrastructure/build-recommendation-response/handler_test.go
package buildrecommendationresponse

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"career-recommender-workers/internal/catalog"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["requestId", "status", "data", "metadata"],
	"properties": {
		"status": {"type": "string", "enum": ["success", "error"]},
		"data": {
			"type": "object",
			"required": ["studentInfo", "recommendations", "mlEnhanced"],
			"properties": {
				"recommendations": {"type": "array", "maxItems": 10}
			}
		}
	}
}`

func writeRegistry(t *testing.T, schema string) string {
	var schemaMap map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(schema), &schemaMap))

	registry := map[string]interface{}{
		"templates": []TemplateDefinition{
			{ID: "recommendation-response", Type: "recommendation", Schema: schemaMap, Version: "1"},
		},
	}
	data, err := json.Marshal(registry)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "response-templates.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func careerRow() *sqlmock.Rows {
	keySubjects, _ := json.Marshal([]string{"Mathematics"})
	institutions, _ := json.Marshal([]string{"University of Nairobi"})
	jobProspects, _ := json.Marshal([]string{"Civil Engineer"})

	return sqlmock.NewRows([]string{
		"id", "title", "category", "description", "minimum_mean_grade",
		"key_subjects", "required_grades", "market_demand", "salary",
		"institutions", "job_prospects",
	}).AddRow("career-1", "Engineering", "Technical", "Build things", "C+",
		keySubjects, []byte("null"), "High", "KES 80,000", institutions, jobProspects)
}

func testInput() *Input {
	return &Input{
		RequestID: "req-1",
		LearnerID: "learner-1",
		Results:   models.ExamResults{MeanGrade: "B+", MeanPoints: 10},
		Strengths: []string{"Sciences"},
		Recommendations: []models.ScoredCareer{
			{CareerID: "career-1", Match: 84, Reasons: []string{"reason"}},
		},
		MLEnhanced: false,
	}
}

func newHandlerWithRegistry(t *testing.T, registryPath string, mock func(sqlmock.Sqlmock)) *Handler {
	db, m := setupMockDB(t)
	if mock != nil {
		mock(m)
	}
	store := catalog.NewStore(db, nil, 10*time.Minute, logger.NewNoOpLogger())

	config := LoadConfig()
	config.TemplateRegistry = registryPath
	return NewHandler(config, store, logger.NewNoOpLogger())
}

func TestHandler_Execute_BuildsAndValidates(t *testing.T) {
	handler := newHandlerWithRegistry(t, writeRegistry(t, testSchema), func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, title, category").WithArgs("career-1").WillReturnRows(careerRow())
	})

	output, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)

	resp := output.Response
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "B+", resp.Data.StudentInfo.MeanGrade)
	assert.Equal(t, []string{"Sciences"}, resp.Data.StudentInfo.Strengths)
	assert.NotEmpty(t, resp.Metadata.Timestamp)

	require.Len(t, resp.Data.Recommendations, 1)
	rec := resp.Data.Recommendations[0]
	assert.Equal(t, "Engineering", rec.Title)
	assert.Equal(t, "KES 80,000", rec.Salary)
	assert.Equal(t, []string{"University of Nairobi"}, rec.Institutions)
	assert.Equal(t, 84, rec.Match)
}

func TestHandler_Execute_CareerLookupFailureKeepsScoredFields(t *testing.T) {
	handler := newHandlerWithRegistry(t, writeRegistry(t, testSchema), func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, title, category").WithArgs("career-1").WillReturnError(sql.ErrNoRows)
	})

	output, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)

	rec := output.Response.Data.Recommendations[0]
	assert.Equal(t, "career-1", rec.CareerID)
	assert.Equal(t, 84, rec.Match)
	assert.Empty(t, rec.Description)
}

func TestHandler_Execute_TemplateNotFound(t *testing.T) {
	handler := newHandlerWithRegistry(t, writeRegistry(t, testSchema), func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, title, category").WithArgs("career-1").WillReturnRows(careerRow())
	})
	handler.config.TemplateID = "missing-template"

	_, err := handler.Execute(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestHandler_Execute_SchemaViolation(t *testing.T) {
	strictSchema := `{
		"type": "object",
		"required": ["requestId", "status", "data", "metadata", "signature"]
	}`
	handler := newHandlerWithRegistry(t, writeRegistry(t, strictSchema), func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, title, category").WithArgs("career-1").WillReturnRows(careerRow())
	})

	_, err := handler.Execute(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrResponseValidationFailed)
}

func TestHandler_Execute_TemplateCached(t *testing.T) {
	registryPath := writeRegistry(t, testSchema)
	handler := newHandlerWithRegistry(t, registryPath, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT id, title, category").WithArgs("career-1").WillReturnRows(careerRow())
		m.ExpectQuery("SELECT id, title, category").WithArgs("career-1").WillReturnRows(careerRow())
	})

	_, err := handler.Execute(context.Background(), testInput())
	require.NoError(t, err)

	// remove the registry; the cached template must still serve
	require.NoError(t, os.Remove(registryPath))
	_, err = handler.Execute(context.Background(), testInput())
	assert.NoError(t, err)
}
