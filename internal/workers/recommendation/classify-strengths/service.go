// internal/workers/recommendation/classify-strengths/service.go
package classifystrengths

import (
	"sort"

	"career-recommender-workers/internal/grades"
	"career-recommender-workers/internal/models"
)

// subjectCategories maps canonical subject names to their coarse category.
// Subjects not listed fall into "Other".
var subjectCategories = map[string]string{
	"Mathematics":                   "Sciences",
	"Physics":                       "Sciences",
	"Chemistry":                     "Sciences",
	"Biology":                       "Sciences",
	"English":                       "Languages",
	"Kiswahili":                     "Languages",
	"French":                        "Languages",
	"German":                        "Languages",
	"Arabic":                        "Languages",
	"History":                       "Humanities",
	"History & Government":          "Humanities",
	"Geography":                     "Humanities",
	"Religious Education":           "Humanities",
	"Christian Religious Education": "Humanities",
	"Islamic Religious Education":   "Humanities",
	"Hindu Religious Education":     "Humanities",
	"Business Studies":              "Commerce",
	"Economics":                     "Commerce",
	"Accounting":                    "Commerce",
	"Computer Studies":              "Technical",
	"Agriculture":                   "Technical",
	"Home Science":                  "Technical",
	"Art & Design":                  "Creative Arts",
	"Music":                         "Creative Arts",
}

// CategoryAverages computes the mean point value per subject category for
// the learner's subjects.
func CategoryAverages(subjects []models.SubjectResult) map[string]float64 {
	sums := map[string]int{}
	counts := map[string]int{}

	for _, subject := range subjects {
		category, ok := subjectCategories[subject.Subject]
		if !ok {
			category = "Other"
		}
		sums[category] += grades.PointsOf(subject.Grade)
		counts[category]++
	}

	averages := make(map[string]float64, len(sums))
	for category, sum := range sums {
		averages[category] = float64(sum) / float64(counts[category])
	}
	return averages
}

// TopStrengths returns up to topCount category names ordered by descending
// average points. Equal averages order alphabetically so the ranking is
// stable across runs.
func TopStrengths(subjects []models.SubjectResult, topCount int) []string {
	averages := CategoryAverages(subjects)

	categories := make([]string, 0, len(averages))
	for category := range averages {
		categories = append(categories, category)
	}

	sort.Slice(categories, func(i, j int) bool {
		if averages[categories[i]] != averages[categories[j]] {
			return averages[categories[i]] > averages[categories[j]]
		}
		return categories[i] < categories[j]
	})

	if len(categories) > topCount {
		categories = categories[:topCount]
	}
	return categories
}
