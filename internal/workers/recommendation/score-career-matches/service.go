// internal/workers/recommendation/score-career-matches/service.go
package scorecareermatches

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"career-recommender-workers/internal/grades"
	"career-recommender-workers/internal/models"
)

var demandBonus = map[string]float64{
	"Very High": 20,
	"High":      15,
	"Medium":    10,
	"Low":       5,
}

// CalculateMatchScore computes the 0-100 compatibility score for one career.
// The minimum mean grade is a hard gate: an ineligible learner scores 0
// regardless of subject fit or market demand.
func CalculateMatchScore(results models.ExamResults, career models.Career) int {
	minGradePoints := grades.PointsOf(career.MinimumMeanGrade)
	meanGradePoints := grades.PointsOf(results.MeanGrade)
	if meanGradePoints < minGradePoints {
		return 0
	}

	// Mean grade component, up to 40
	score := (float64(meanGradePoints) / grades.MaxPoints) * 40

	// Subject fit component, up to 40
	subjectMap := make(map[string]int, len(results.Subjects))
	for _, subject := range results.Subjects {
		subjectMap[strings.ToLower(subject.Subject)] = grades.PointsOf(subject.Grade)
	}

	var subjectScore float64
	requiredSubjectsCount := len(career.KeySubjects)

	for _, subject := range career.KeySubjects {
		points, taken := subjectMap[strings.ToLower(subject)]
		if !taken {
			continue
		}

		if requiredGrade, ok := career.RequiredGrades[subject]; ok && requiredGrade != "" {
			if points >= grades.PointsOf(requiredGrade) {
				subjectScore += 10 // full credit for meeting the specific requirement
			} else {
				subjectScore += 5 // partial credit for exposure without meeting the bar
			}
		} else {
			subjectScore += (float64(points) / grades.MaxPoints) * 10
		}
	}

	if requiredSubjectsCount > 0 {
		score += (subjectScore / float64(requiredSubjectsCount*10)) * 40
	}

	// Market demand bonus, up to 20, flat
	score += demandBonus[career.MarketDemand]

	return int(math.Round(score))
}

// GenerateReasons produces the ordered justification sentences for a scored
// career. Order is significant: performance tier, then subject coverage,
// then market demand.
func GenerateReasons(results models.ExamResults, career models.Career, match int) []string {
	reasons := []string{}

	performanceLevel := grades.PerformanceLevel(results.MeanGrade)

	switch {
	case match >= 90:
		reasons = append(reasons, fmt.Sprintf("Your %s overall performance aligns perfectly with this career path.", performanceLevel))
	case match >= 75:
		reasons = append(reasons, fmt.Sprintf("Your %s overall performance is well-suited for this career.", performanceLevel))
	case match >= 60:
		reasons = append(reasons, fmt.Sprintf("Your %s overall performance meets the requirements for this career.", performanceLevel))
	default:
		reasons = append(reasons, "Your overall performance meets the minimum requirements for this career.")
	}

	matched := MatchedKeySubjects(results, career)
	if len(matched) > 0 {
		if len(matched) == len(career.KeySubjects) {
			reasons = append(reasons, fmt.Sprintf("You've studied all the key subjects required for this career: %s.", strings.Join(matched, ", ")))
		} else {
			reasons = append(reasons, fmt.Sprintf("You've studied %d of %d key subjects for this career: %s.", len(matched), len(career.KeySubjects), strings.Join(matched, ", ")))
		}
	}

	switch career.MarketDemand {
	case "Very High":
		reasons = append(reasons, "This career has very high demand in the current job market.")
	case "High":
		reasons = append(reasons, "This career has high demand in the current job market.")
	}

	return reasons
}

// MatchedKeySubjects returns the key subjects the learner has taken, in
// catalog order, preserving the catalog's casing.
func MatchedKeySubjects(results models.ExamResults, career models.Career) []string {
	taken := make(map[string]bool, len(results.Subjects))
	for _, subject := range results.Subjects {
		taken[strings.ToLower(subject.Subject)] = true
	}

	var matched []string
	for _, subject := range career.KeySubjects {
		if taken[strings.ToLower(subject)] {
			matched = append(matched, subject)
		}
	}
	return matched
}

// ScoreCatalog scores every career, keeps those at or above minMatch and
// sorts descending. Equal scores order by career ID so ranking is stable
// across runs.
func ScoreCatalog(results models.ExamResults, careers []models.Career, minMatch int) []models.ScoredCareer {
	scored := []models.ScoredCareer{}
	for _, career := range careers {
		match := CalculateMatchScore(results, career)
		if match < minMatch {
			continue
		}
		scored = append(scored, models.ScoredCareer{
			CareerID: career.ID,
			Title:    career.Title,
			Match:    match,
			Reasons:  GenerateReasons(results, career, match),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Match != scored[j].Match {
			return scored[i].Match > scored[j].Match
		}
		return scored[i].CareerID < scored[j].CareerID
	})

	return scored
}
