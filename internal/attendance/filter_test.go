package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/attendance-api/internal/models"
)

var roster = []models.Student{
	{ID: "1", StudentID: "NIS-001", Name: "Ayu Lestari", Class: "7A"},
	{ID: "2", StudentID: "NIS-002", Name: "Budi Santoso", Class: "7B"},
	{ID: "3", StudentID: "X-77", Name: "Citra", Class: "7a"},
	{ID: "4", StudentID: "NIS-004", Name: "Dewi", Class: "7A"},
}

func ids(students []models.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterEmptyMatchesAllInOrder(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Filter{}.Apply(roster)))
}

func TestFilterClassIsExact(t *testing.T) {
	assert.Equal(t, []string{"1", "4"}, ids(Filter{Class: "7A"}.Apply(roster)))
	assert.Equal(t, []string{"3"}, ids(Filter{Class: "7a"}.Apply(roster)))
}

func TestFilterTextIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"2"}, ids(Filter{Search: "BUDI"}.Apply(roster)))
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter{Search: "nis-0"}.Apply(roster)))
}

func TestFilterClassLabelOnlyInRosterVariant(t *testing.T) {
	assert.Empty(t, Filter{Search: "7b"}.Apply(roster))
	assert.Equal(t, []string{"2"}, ids(Filter{Search: "7b", MatchClass: true}.Apply(roster)))
}

func TestFilterIsIdempotentAndOrderIndependent(t *testing.T) {
	combined := Filter{Search: "a", Class: "7A", MatchClass: true}
	once := combined.Apply(roster)
	assert.Equal(t, once, combined.Apply(once))

	classFirst := Filter{Search: "a", MatchClass: true}.Apply(Filter{Class: "7A"}.Apply(roster))
	textFirst := Filter{Class: "7A"}.Apply(Filter{Search: "a", MatchClass: true}.Apply(roster))
	assert.Equal(t, ids(once), ids(classFirst))
	assert.Equal(t, ids(once), ids(textFirst))

	for _, s := range roster {
		assert.Equal(t, combined.Match(s), len(combined.Apply([]models.Student{s})) == 1)
	}
}

func TestClassesSortedDistinct(t *testing.T) {
	assert.Equal(t, []string{"7A", "7B", "7a"}, Classes(roster))
	assert.Empty(t, Classes(nil))
}
