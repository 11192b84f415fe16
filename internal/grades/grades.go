// Package grades maps KCSE letter grades to the 12-point scale used by the
// scoring pipeline and classifies them into performance levels.
package grades

// MaxPoints is the value of the top grade on the 12-point scale.
const MaxPoints = 12

var gradePoints = map[string]int{
	"A":  12,
	"A-": 11,
	"B+": 10,
	"B":  9,
	"B-": 8,
	"C+": 7,
	"C":  6,
	"C-": 5,
	"D+": 4,
	"D":  3,
	"D-": 2,
	"E":  1,
}

var performanceLevels = map[string]string{
	"A":  "excellent",
	"A-": "excellent",
	"B+": "very good",
	"B":  "good",
	"B-": "good",
	"C+": "average",
	"C":  "average",
	"C-": "below average",
	"D+": "poor",
	"D":  "poor",
	"D-": "poor",
	"E":  "poor",
}

// PointsOf returns the point value for a letter grade. Unknown grades map
// to 0 so they never satisfy a minimum-grade requirement.
func PointsOf(grade string) int {
	return gradePoints[grade]
}

// IsValid reports whether the grade is one of the twelve recognized letters.
func IsValid(grade string) bool {
	_, ok := gradePoints[grade]
	return ok
}

// MeetsMinimum reports whether got satisfies a required minimum grade.
func MeetsMinimum(got, required string) bool {
	return PointsOf(got) >= PointsOf(required)
}

// PerformanceLevel returns the qualitative tier for a grade. Unknown grades
// fall back to "average" so explanation text stays neutral.
func PerformanceLevel(grade string) string {
	if level, ok := performanceLevels[grade]; ok {
		return level
	}
	return "average"
}

// All returns the recognized grades in descending point order.
func All() []string {
	return []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "E"}
}
