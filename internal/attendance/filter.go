package attendance

import (
	"sort"
	"strings"

	"github.com/noah-isme/attendance-api/internal/models"
)

// Filter selects students by class label and free text.
type Filter struct {
	// Search is matched case-insensitively as a substring.
	Search string `json:"search,omitempty"`
	// Class must equal the student's class exactly when set.
	Class string `json:"class,omitempty"`
	// MatchClass extends Search to the class label.
	MatchClass bool `json:"-"`
}

// Match reports whether student passes both the class and text filters.
func (f Filter) Match(student models.Student) bool {
	return f.matchClass(student) && f.matchText(student, strings.ToLower(f.Search))
}

// Apply returns the matching students in their original order.
func (f Filter) Apply(students []models.Student) []models.Student {
	term := strings.ToLower(f.Search)
	result := make([]models.Student, 0, len(students))
	for _, student := range students {
		if f.matchClass(student) && f.matchText(student, term) {
			result = append(result, student)
		}
	}
	return result
}

func (f Filter) matchClass(student models.Student) bool {
	return f.Class == "" || student.Class == f.Class
}

func (f Filter) matchText(student models.Student, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(student.Name), term) ||
		strings.Contains(strings.ToLower(student.StudentID), term) {
		return true
	}
	return f.MatchClass && strings.Contains(strings.ToLower(student.Class), term)
}

// Classes returns the distinct class labels, sorted.
func Classes(students []models.Student) []string {
	seen := make(map[string]struct{}, len(students))
	classes := make([]string, 0)
	for _, student := range students {
		if _, ok := seen[student.Class]; ok {
			continue
		}
		seen[student.Class] = struct{}{}
		classes = append(classes, student.Class)
	}
	sort.Strings(classes)
	return classes
}
