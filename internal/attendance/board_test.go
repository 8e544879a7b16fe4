package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
)

func TestBoardTransitionsDoNotMutate(t *testing.T) {
	d := day(t, "2024-03-01")
	students := []models.Student{
		{ID: "s1", Name: "Ayu", Class: "7A"},
		{ID: "s2", Name: "Budi", Class: "7B"},
	}
	board := NewBoard(d, students, []models.Attendance{
		record(t, "r1", "s1", "2024-03-01", models.AttendanceStatusPresent),
	}, Filter{})

	filtered := board.WithFilter(Filter{Search: "7b"})
	assert.Empty(t, board.Filter.Search)
	assert.Equal(t, []string{"s2"}, ids(filtered.Visible()))
	assert.Len(t, board.Visible(), 2)

	decision, err := board.Decide(MarkInput{StudentID: "s2", Date: d, Status: models.AttendanceStatusLate, Actor: "u1"})
	require.NoError(t, err)
	next := board.Apply(decision)

	_, marked := board.Status("s2")
	assert.False(t, marked)
	status, marked := next.Status("s2")
	assert.True(t, marked)
	assert.Equal(t, models.AttendanceStatusLate, status)
}

func TestBoardSummaryUsesClassScope(t *testing.T) {
	d := day(t, "2024-03-01")
	students := []models.Student{{ID: "s1", Class: "A"}, {ID: "s2", Class: "B"}}
	board := NewBoard(d, students, nil, Filter{Class: "A", Search: "zzz"})

	summary, anomalies := board.Summary()
	assert.Empty(t, anomalies)
	assert.Equal(t, DailySummary{Date: "2024-03-01", Class: "A", Total: 1, Unmarked: 1}, summary)
}

func TestNewBoardCarriesDuplicateAnomalies(t *testing.T) {
	board := NewBoard(day(t, "2024-03-01"), nil, []models.Attendance{
		record(t, "r1", "s1", "2024-03-01", models.AttendanceStatusPresent),
		record(t, "r2", "s1", "2024-03-01", models.AttendanceStatusLate),
	}, Filter{})

	require.Len(t, board.Anomalies, 1)
	assert.Equal(t, AnomalyDuplicateRecord, board.Anomalies[0].Kind)
	assert.Equal(t, "r2", board.Day["s1"].ID)
}
