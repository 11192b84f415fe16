// internal/workers/recommendation/classify-strengths/service_test.go
package classifystrengths

import (
	"context"
	"testing"

	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSubjects() []models.SubjectResult {
	return []models.SubjectResult{
		{Subject: "Mathematics", Grade: "A"},  // Sciences 12
		{Subject: "Physics", Grade: "A-"},     // Sciences 11
		{Subject: "English", Grade: "B"},      // Languages 9
		{Subject: "Kiswahili", Grade: "B-"},   // Languages 8
		{Subject: "History", Grade: "C+"},     // Humanities 7
		{Subject: "Economics", Grade: "C"},    // Commerce 6
		{Subject: "Agriculture", Grade: "C-"}, // Technical 5
	}
}

func TestCategoryAverages(t *testing.T) {
	averages := CategoryAverages(sampleSubjects())

	assert.InDelta(t, 11.5, averages["Sciences"], 0.001)
	assert.InDelta(t, 8.5, averages["Languages"], 0.001)
	assert.InDelta(t, 7.0, averages["Humanities"], 0.001)
	assert.InDelta(t, 6.0, averages["Commerce"], 0.001)
	assert.InDelta(t, 5.0, averages["Technical"], 0.001)
	assert.NotContains(t, averages, "Other")
	assert.NotContains(t, averages, "Creative Arts")
}

func TestCategoryAverages_UnknownSubjectGoesToOther(t *testing.T) {
	averages := CategoryAverages([]models.SubjectResult{
		{Subject: "Woodwork", Grade: "B"},
	})

	require.Contains(t, averages, "Other")
	assert.InDelta(t, 9.0, averages["Other"], 0.001)
}

func TestCategoryAverages_UnknownGradeCountsAsZero(t *testing.T) {
	averages := CategoryAverages([]models.SubjectResult{
		{Subject: "Mathematics", Grade: "A"},
		{Subject: "Physics", Grade: "??"},
	})

	assert.InDelta(t, 6.0, averages["Sciences"], 0.001)
}

func TestCategoryAverages_FullSubjectNames(t *testing.T) {
	averages := CategoryAverages([]models.SubjectResult{
		{Subject: "History & Government", Grade: "A"},
		{Subject: "Christian Religious Education", Grade: "A"},
		{Subject: "Islamic Religious Education", Grade: "B"},
		{Subject: "Hindu Religious Education", Grade: "B"},
		{Subject: "Mathematics", Grade: "E"},
	})

	require.Contains(t, averages, "Humanities")
	assert.InDelta(t, 10.5, averages["Humanities"], 0.001)
	assert.NotContains(t, averages, "Other")
}

func TestTopStrengths_FullSubjectNames(t *testing.T) {
	strengths := TopStrengths([]models.SubjectResult{
		{Subject: "History & Government", Grade: "A"},
		{Subject: "Christian Religious Education", Grade: "A"},
		{Subject: "Mathematics", Grade: "E"},
	}, 3)

	assert.Equal(t, []string{"Humanities", "Sciences"}, strengths)
}

func TestTopStrengths(t *testing.T) {
	strengths := TopStrengths(sampleSubjects(), 3)

	assert.Equal(t, []string{"Sciences", "Languages", "Humanities"}, strengths)
}

func TestTopStrengths_AtMostThree(t *testing.T) {
	strengths := TopStrengths(sampleSubjects(), 3)
	assert.LessOrEqual(t, len(strengths), 3)
}

func TestTopStrengths_AlphabeticalTieBreak(t *testing.T) {
	subjects := []models.SubjectResult{
		{Subject: "Mathematics", Grade: "B"}, // Sciences 9
		{Subject: "English", Grade: "B"},     // Languages 9
		{Subject: "History", Grade: "B"},     // Humanities 9
		{Subject: "Economics", Grade: "B"},   // Commerce 9
	}

	strengths := TopStrengths(subjects, 3)
	assert.Equal(t, []string{"Commerce", "Humanities", "Languages"}, strengths)
}

func TestTopStrengths_FewerCategoriesThanLimit(t *testing.T) {
	subjects := []models.SubjectResult{
		{Subject: "Mathematics", Grade: "A"},
		{Subject: "Physics", Grade: "B"},
	}

	strengths := TopStrengths(subjects, 3)
	assert.Equal(t, []string{"Sciences"}, strengths)
}

func TestTopStrengths_EmptyInput(t *testing.T) {
	assert.Empty(t, TopStrengths(nil, 3))
}

func TestHandler_Execute(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), &Input{
		LearnerID: "learner-1",
		Results:   models.ExamResults{Subjects: sampleSubjects()},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sciences", "Languages", "Humanities"}, output.Strengths)
	assert.Len(t, output.CategoryAverages, 5)
}
