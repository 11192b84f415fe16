// internal/workers/recommendation/score-career-matches/service_test.go
package scorecareermatches

import (
	"testing"

	"career-recommender-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strongLearner() models.ExamResults {
	return models.ExamResults{
		Year: 2023,
		Subjects: []models.SubjectResult{
			{Subject: "Mathematics", Grade: "A"},
			{Subject: "Physics", Grade: "A-"},
			{Subject: "Chemistry", Grade: "B"},
			{Subject: "English", Grade: "B+"},
			{Subject: "Kiswahili", Grade: "B"},
			{Subject: "Biology", Grade: "B-"},
			{Subject: "Geography", Grade: "C+"},
		},
		MeanGrade:  "B+",
		MeanPoints: 10,
	}
}

func engineeringCareer() models.Career {
	return models.Career{
		ID:               "career-eng",
		Title:            "Engineering",
		MinimumMeanGrade: "C+",
		KeySubjects:      []string{"Mathematics", "Physics", "Chemistry"},
		MarketDemand:     "High",
	}
}

func TestCalculateMatchScore_WorkedExample(t *testing.T) {
	// mean (10/12)*40 = 33.33, subjects ((10+9.17+7.5)/30)*40 = 35.56,
	// demand 15, total 83.89 rounds to 84
	score := CalculateMatchScore(strongLearner(), engineeringCareer())
	assert.Equal(t, 84, score)
}

func TestCalculateMatchScore_EligibilityGate(t *testing.T) {
	career := engineeringCareer()
	career.MinimumMeanGrade = "A-"

	assert.Equal(t, 0, CalculateMatchScore(strongLearner(), career))
}

func TestCalculateMatchScore_GateBeatsDemand(t *testing.T) {
	career := engineeringCareer()
	career.MinimumMeanGrade = "A"
	career.MarketDemand = "Very High"

	assert.Equal(t, 0, CalculateMatchScore(strongLearner(), career))
}

func TestCalculateMatchScore_DemandDelta(t *testing.T) {
	low := engineeringCareer()
	low.MarketDemand = "Low"
	veryHigh := engineeringCareer()
	veryHigh.MarketDemand = "Very High"

	assert.Equal(t, 15, CalculateMatchScore(strongLearner(), veryHigh)-CalculateMatchScore(strongLearner(), low))
}

func TestCalculateMatchScore_UnknownDemandNoBonus(t *testing.T) {
	known := engineeringCareer()
	known.MarketDemand = "Low"
	unknown := engineeringCareer()
	unknown.MarketDemand = "Booming"

	assert.Equal(t, 5, CalculateMatchScore(strongLearner(), known)-CalculateMatchScore(strongLearner(), unknown))
}

func TestCalculateMatchScore_RequiredGrades(t *testing.T) {
	career := engineeringCareer()
	career.KeySubjects = []string{"Mathematics", "Physics"}
	career.RequiredGrades = map[string]string{
		"Mathematics": "B", // learner has A, meets it -> 10
		"Physics":     "A", // learner has A-, misses it -> 5
	}

	// mean 33.33 + subjects (15/20)*40 = 30 + demand 15 = 78.33 -> 78
	assert.Equal(t, 78, CalculateMatchScore(strongLearner(), career))
}

func TestCalculateMatchScore_SubjectNotTaken(t *testing.T) {
	career := engineeringCareer()
	career.KeySubjects = []string{"Music", "Art & Design"}

	// no key subject taken: subject component is 0
	// mean 33.33 + 0 + demand 15 = 48.33 -> 48
	assert.Equal(t, 48, CalculateMatchScore(strongLearner(), career))
}

func TestCalculateMatchScore_EmptyKeySubjects(t *testing.T) {
	career := engineeringCareer()
	career.KeySubjects = nil

	// must not divide by zero; subject component contributes exactly 0
	assert.Equal(t, 48, CalculateMatchScore(strongLearner(), career))
}

func TestCalculateMatchScore_SubjectLookupCaseInsensitive(t *testing.T) {
	career := engineeringCareer()
	career.KeySubjects = []string{"MATHEMATICS", "physics", "Chemistry"}

	assert.Equal(t, 84, CalculateMatchScore(strongLearner(), career))
}

func TestCalculateMatchScore_AlwaysInRange(t *testing.T) {
	careers := []models.Career{
		{ID: "a", MinimumMeanGrade: "E", KeySubjects: []string{"Mathematics"}, MarketDemand: "Very High"},
		{ID: "b", MinimumMeanGrade: "", MarketDemand: ""},
		{ID: "c", MinimumMeanGrade: "C", KeySubjects: []string{"Unknown Subject"}, MarketDemand: "Low"},
		{ID: "d", MinimumMeanGrade: "A", KeySubjects: nil, MarketDemand: "Very High"},
	}
	learners := []models.ExamResults{
		strongLearner(),
		{MeanGrade: "E", Subjects: []models.SubjectResult{{Subject: "Mathematics", Grade: "E"}}},
		{MeanGrade: "??", Subjects: nil},
	}

	for _, learner := range learners {
		for _, career := range careers {
			score := CalculateMatchScore(learner, career)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

func TestGenerateReasons_HighMatch(t *testing.T) {
	reasons := GenerateReasons(strongLearner(), engineeringCareer(), 84)

	require.Len(t, reasons, 3)
	assert.Equal(t, "Your very good overall performance is well-suited for this career.", reasons[0])
	assert.Equal(t, "You've studied all the key subjects required for this career: Mathematics, Physics, Chemistry.", reasons[1])
	assert.Equal(t, "This career has high demand in the current job market.", reasons[2])
}

func TestGenerateReasons_ScoreBands(t *testing.T) {
	tests := []struct {
		match    int
		expected string
	}{
		{95, "Your very good overall performance aligns perfectly with this career path."},
		{84, "Your very good overall performance is well-suited for this career."},
		{65, "Your very good overall performance meets the requirements for this career."},
		{52, "Your overall performance meets the minimum requirements for this career."},
	}

	for _, tt := range tests {
		reasons := GenerateReasons(strongLearner(), engineeringCareer(), tt.match)
		require.NotEmpty(t, reasons)
		assert.Equal(t, tt.expected, reasons[0])
	}
}

func TestGenerateReasons_PartialSubjectCoverage(t *testing.T) {
	career := engineeringCareer()
	career.KeySubjects = []string{"Mathematics", "Physics", "Computer Studies"}

	reasons := GenerateReasons(strongLearner(), career, 70)
	require.Len(t, reasons, 3)
	assert.Equal(t, "You've studied 2 of 3 key subjects for this career: Mathematics, Physics.", reasons[1])
}

func TestGenerateReasons_NoSubjectSentenceWhenNoneMatched(t *testing.T) {
	career := engineeringCareer()
	career.KeySubjects = []string{"Music"}
	career.MarketDemand = "Medium"

	reasons := GenerateReasons(strongLearner(), career, 55)
	require.Len(t, reasons, 1)
}

func TestGenerateReasons_DemandSentenceOnlyForHighTiers(t *testing.T) {
	for _, demand := range []string{"Medium", "Low", ""} {
		career := engineeringCareer()
		career.MarketDemand = demand

		reasons := GenerateReasons(strongLearner(), career, 80)
		for _, reason := range reasons {
			assert.NotContains(t, reason, "job market")
		}
	}
}

func TestScoreCatalog_FiltersAndSorts(t *testing.T) {
	careers := []models.Career{
		{ID: "career-low", Title: "Low Fit", MinimumMeanGrade: "A", MarketDemand: "Low"},
		{ID: "career-b", Title: "B", MinimumMeanGrade: "C+", KeySubjects: []string{"Mathematics", "Physics", "Chemistry"}, MarketDemand: "High"},
		{ID: "career-a", Title: "A", MinimumMeanGrade: "C+", KeySubjects: []string{"Mathematics", "Physics", "Chemistry"}, MarketDemand: "High"},
		{ID: "career-mid", Title: "Mid", MinimumMeanGrade: "C", KeySubjects: []string{"English"}, MarketDemand: "Medium"},
	}

	scored := ScoreCatalog(strongLearner(), careers, 50)

	require.Len(t, scored, 3)
	for _, rec := range scored {
		assert.GreaterOrEqual(t, rec.Match, 50)
		assert.NotEmpty(t, rec.Reasons)
	}

	// equal scores order by career ID
	assert.Equal(t, "career-a", scored[0].CareerID)
	assert.Equal(t, "career-b", scored[1].CareerID)
	assert.True(t, scored[0].Match >= scored[1].Match)
	assert.True(t, scored[1].Match >= scored[2].Match)
}

func TestScoreCatalog_EmptyResultIsSlice(t *testing.T) {
	careers := []models.Career{
		{ID: "career-hard", MinimumMeanGrade: "A", MarketDemand: "Low"},
	}

	scored := ScoreCatalog(strongLearner(), careers, 50)
	assert.NotNil(t, scored)
	assert.Empty(t, scored)
}
