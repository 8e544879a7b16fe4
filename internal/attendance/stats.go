package attendance

import (
	"sort"
	"strconv"

	"github.com/noah-isme/attendance-api/internal/models"
)

// Stats tallies attendance for a student or a group over a range.
type Stats struct {
	StudentID   string  `json:"student_id,omitempty"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	Late        int     `json:"late"`
	Total       int     `json:"total"`
	PresentRate float64 `json:"present_rate"`
}

// RateLabel renders the present rate with one decimal, e.g. "66.7%".
func (s Stats) RateLabel() string {
	return strconv.FormatFloat(s.PresentRate, 'f', 1, 64) + "%"
}

// add counts status and reports whether it was recognised.
func (s *Stats) add(status models.AttendanceStatus) bool {
	switch status {
	case models.AttendanceStatusPresent:
		s.Present++
	case models.AttendanceStatusAbsent:
		s.Absent++
	case models.AttendanceStatusLate:
		s.Late++
	default:
		return false
	}
	s.Total++
	return true
}

func (s *Stats) finish() {
	s.Total = s.Present + s.Absent + s.Late
	if s.Total == 0 {
		s.PresentRate = 0
		return
	}
	s.PresentRate = float64(s.Present+s.Late) / float64(s.Total) * 100
}

// StudentStats tallies the records belonging to studentID.
// Records with an unrecognised status are left out of the totals.
func StudentStats(studentID string, records []models.Attendance) (Stats, []Anomaly) {
	stats := Stats{StudentID: studentID}
	var anomalies []Anomaly
	for _, record := range records {
		if record.StudentID != studentID {
			continue
		}
		if !stats.add(record.Status) {
			anomalies = append(anomalies, unknownStatus(record))
		}
	}
	stats.finish()
	return stats, anomalies
}

// ByStudent returns one Stats per student, in the students' order.
// Records for students outside the list are ignored.
func ByStudent(students []models.Student, records []models.Attendance) ([]Stats, []Anomaly) {
	index := make(map[string]int, len(students))
	result := make([]Stats, len(students))
	for i, student := range students {
		index[student.ID] = i
		result[i].StudentID = student.ID
	}

	var anomalies []Anomaly
	for _, record := range records {
		i, ok := index[record.StudentID]
		if !ok {
			continue
		}
		if !result[i].add(record.Status) {
			anomalies = append(anomalies, unknownStatus(record))
		}
	}
	for i := range result {
		result[i].finish()
	}
	return result, anomalies
}

// ClassStat aggregates every student sharing a class label.
type ClassStat struct {
	Class    string `json:"class"`
	Students int    `json:"students"`
	Stats
}

// ClassStats groups attendance by class label, sorted by label.
func ClassStats(students []models.Student, records []models.Attendance) ([]ClassStat, []Anomaly) {
	classOf := make(map[string]string, len(students))
	groups := make(map[string]*ClassStat)
	for _, student := range students {
		classOf[student.ID] = student.Class
		group, ok := groups[student.Class]
		if !ok {
			group = &ClassStat{Class: student.Class}
			groups[student.Class] = group
		}
		group.Students++
	}

	var anomalies []Anomaly
	for _, record := range records {
		class, ok := classOf[record.StudentID]
		if !ok {
			continue
		}
		if !groups[class].add(record.Status) {
			anomalies = append(anomalies, unknownStatus(record))
		}
	}

	result := make([]ClassStat, 0, len(groups))
	for _, group := range groups {
		group.finish()
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Class < result[j].Class })
	return result, anomalies
}

// Totals folds many tallies into one.
func Totals(list []Stats) Stats {
	var total Stats
	for _, s := range list {
		total.Present += s.Present
		total.Absent += s.Absent
		total.Late += s.Late
	}
	total.finish()
	return total
}

func unknownStatus(record models.Attendance) Anomaly {
	return Anomaly{
		RecordID:  record.ID,
		StudentID: record.StudentID,
		Date:      record.Day(),
		Kind:      AnomalyUnknownStatus,
		Value:     string(record.Status),
	}
}
