package dto

import (
	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/models"
)

// DailyQuery selects the daily sheet.
type DailyQuery struct {
	Date   string `form:"date"`
	Search string `form:"search"`
	Class  string `form:"class"`
}

// DailyRow is one student line on the daily sheet.
type DailyRow struct {
	Student  models.Student           `json:"student"`
	Status   *models.AttendanceStatus `json:"status"`
	RecordID string                   `json:"record_id,omitempty"`
}

// DailySheet is the roster view for one day.
type DailySheet struct {
	Date      string                  `json:"date"`
	Rows      []DailyRow              `json:"rows"`
	Summary   attendance.DailySummary `json:"summary"`
	Classes   []string                `json:"classes"`
	Anomalies []attendance.Anomaly    `json:"anomalies,omitempty"`
}

// MarkResult reports the write performed and the refreshed summary.
type MarkResult struct {
	Decision attendance.Decision     `json:"decision"`
	Summary  attendance.DailySummary `json:"summary"`
}

// ReportQuery selects a range report. Empty dates default to month to date.
type ReportQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Search string `form:"search"`
	Class  string `form:"class"`
}

// ReportRow is one student's tally over the range.
type ReportRow struct {
	Student   models.Student   `json:"student"`
	Stats     attendance.Stats `json:"stats"`
	RateLabel string           `json:"rate_label"`
}

// Report aggregates attendance over a date range.
type Report struct {
	From      string                 `json:"from"`
	To        string                 `json:"to"`
	Rows      []ReportRow            `json:"rows"`
	Classes   []attendance.ClassStat `json:"classes"`
	Totals    attendance.Stats       `json:"totals"`
	Anomalies []attendance.Anomaly   `json:"anomalies,omitempty"`
}

// StudentStatsResult is one student's tally over a range.
type StudentStatsResult struct {
	Student   models.Student       `json:"student"`
	From      string               `json:"from"`
	To        string               `json:"to"`
	Stats     attendance.Stats     `json:"stats"`
	RateLabel string               `json:"rate_label"`
	Anomalies []attendance.Anomaly `json:"anomalies,omitempty"`
}
