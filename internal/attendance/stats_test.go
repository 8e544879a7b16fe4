package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
)

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func record(t *testing.T, id, student, date string, status models.AttendanceStatus) models.Attendance {
	return models.Attendance{ID: id, StudentID: student, Date: day(t, date), Status: status}
}

func TestStudentStatsPresentAndLate(t *testing.T) {
	records := []models.Attendance{
		record(t, "r1", "s1", "2024-03-01", models.AttendanceStatusPresent),
		record(t, "r2", "s1", "2024-03-02", models.AttendanceStatusLate),
	}

	stats, anomalies := StudentStats("s1", records)
	assert.Empty(t, anomalies)
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 1, stats.Late)
	assert.Equal(t, 0, stats.Absent)
	assert.Equal(t, 2, stats.Total)
	assert.InDelta(t, 100.0, stats.PresentRate, 1e-9)
	assert.Equal(t, "100.0%", stats.RateLabel())
}

func TestStudentStatsRateAndEmpty(t *testing.T) {
	records := []models.Attendance{
		record(t, "r1", "s1", "2024-03-01", models.AttendanceStatusPresent),
		record(t, "r2", "s1", "2024-03-02", models.AttendanceStatusAbsent),
		record(t, "r3", "s1", "2024-03-03", models.AttendanceStatusLate),
		record(t, "r4", "s2", "2024-03-03", models.AttendanceStatusAbsent),
	}

	stats, _ := StudentStats("s1", records)
	assert.Equal(t, stats.Present+stats.Absent+stats.Late, stats.Total)
	assert.InDelta(t, float64(2)/3*100, stats.PresentRate, 1e-9)
	assert.Equal(t, "66.7%", stats.RateLabel())

	empty, anomalies := StudentStats("nobody", records)
	assert.Empty(t, anomalies)
	assert.Equal(t, 0, empty.Total)
	assert.Zero(t, empty.PresentRate)
	assert.Equal(t, "0.0%", empty.RateLabel())
}

func TestStudentStatsSkipsUnknownStatus(t *testing.T) {
	records := []models.Attendance{
		record(t, "r1", "s1", "2024-03-01", models.AttendanceStatusPresent),
		record(t, "r2", "s1", "2024-03-02", "excused"),
	}

	stats, anomalies := StudentStats("s1", records)
	assert.Equal(t, 1, stats.Total)
	require.Len(t, anomalies, 1)
	assert.Equal(t, Anomaly{RecordID: "r2", StudentID: "s1", Date: "2024-03-02", Kind: AnomalyUnknownStatus, Value: "excused"}, anomalies[0])
}

func TestByStudentMatchesStudentStats(t *testing.T) {
	students := []models.Student{{ID: "s2", Class: "B"}, {ID: "s1", Class: "A"}}
	records := []models.Attendance{
		record(t, "r1", "s1", "2024-03-01", models.AttendanceStatusPresent),
		record(t, "r2", "s2", "2024-03-01", models.AttendanceStatusAbsent),
		record(t, "r3", "s1", "2024-03-02", models.AttendanceStatusAbsent),
		record(t, "r4", "ghost", "2024-03-02", "bogus"),
	}

	rows, anomalies := ByStudent(students, records)
	assert.Empty(t, anomalies)
	require.Len(t, rows, 2)
	for i, student := range students {
		expected, _ := StudentStats(student.ID, records)
		assert.Equal(t, expected, rows[i])
	}
}

func TestClassStatsAndTotals(t *testing.T) {
	students := []models.Student{
		{ID: "s1", Class: "B"},
		{ID: "s2", Class: "A"},
		{ID: "s3", Class: "A"},
	}
	records := []models.Attendance{
		record(t, "r1", "s1", "2024-03-01", models.AttendanceStatusLate),
		record(t, "r2", "s2", "2024-03-01", models.AttendanceStatusPresent),
		record(t, "r3", "s3", "2024-03-01", models.AttendanceStatusAbsent),
		record(t, "r4", "s3", "2024-03-02", "?"),
	}

	classes, anomalies := ClassStats(students, records)
	require.Len(t, classes, 2)
	assert.Len(t, anomalies, 1)

	assert.Equal(t, "A", classes[0].Class)
	assert.Equal(t, 2, classes[0].Students)
	assert.Equal(t, 2, classes[0].Total)
	assert.InDelta(t, 50.0, classes[0].PresentRate, 1e-9)
	assert.Equal(t, "B", classes[1].Class)
	assert.Equal(t, 1, classes[1].Late)

	total := Totals([]Stats{classes[0].Stats, classes[1].Stats})
	assert.Equal(t, 3, total.Total)
	assert.InDelta(t, float64(2)/3*100, total.PresentRate, 1e-9)
	assert.Zero(t, Totals(nil).PresentRate)
}
