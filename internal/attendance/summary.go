package attendance

import "github.com/noah-isme/attendance-api/internal/models"

// DailySummary counts marks for the students in one class scope on one day.
type DailySummary struct {
	Date     string `json:"date"`
	Class    string `json:"class,omitempty"`
	Total    int    `json:"total"`
	Present  int    `json:"present"`
	Absent   int    `json:"absent"`
	Late     int    `json:"late"`
	Unmarked int    `json:"unmarked"`
}

// Summarize counts day's marks for the students in class; an empty class
// means every student. Unknown statuses are skipped, so the buckets sum to
// Total only when every status is recognised.
func Summarize(students []models.Student, day map[string]models.Attendance, class string) (DailySummary, []Anomaly) {
	summary := DailySummary{Class: class}
	var anomalies []Anomaly
	for _, student := range students {
		if class != "" && student.Class != class {
			continue
		}
		summary.Total++

		record, ok := day[student.ID]
		if !ok {
			summary.Unmarked++
			continue
		}
		switch record.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		case models.AttendanceStatusLate:
			summary.Late++
		default:
			anomalies = append(anomalies, unknownStatus(record))
		}
	}
	return summary, anomalies
}

// IndexDay maps student id to that student's record. When a student has
// more than one record the later one wins and the earlier is reported.
func IndexDay(records []models.Attendance) (map[string]models.Attendance, []Anomaly) {
	day := make(map[string]models.Attendance, len(records))
	var anomalies []Anomaly
	for _, record := range records {
		if previous, ok := day[record.StudentID]; ok {
			anomalies = append(anomalies, Anomaly{
				RecordID:  previous.ID,
				StudentID: previous.StudentID,
				Date:      previous.Day(),
				Kind:      AnomalyDuplicateRecord,
				Value:     record.ID,
			})
		}
		day[record.StudentID] = record
	}
	return day, anomalies
}
