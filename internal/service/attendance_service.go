package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type attendanceRepository interface {
	ListByDate(ctx context.Context, ownerID string, date time.Time) ([]models.Attendance, error)
	ListByRange(ctx context.Context, ownerID string, rng models.DateRange, studentID string) ([]models.Attendance, error)
	Insert(ctx context.Context, record *models.Attendance) error
	UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) error
}

// AttendanceService coordinates the daily sheet, marking and reporting.
type AttendanceService struct {
	students  studentRepository
	records   attendanceRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(students studentRepository, records attendanceRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		students:  students,
		records:   records,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// LoadBoard fetches the owner's roster and the day's marks as one snapshot.
// Every successful mutation is followed by a fresh LoadBoard.
func (s *AttendanceService) LoadBoard(ctx context.Context, ownerID string, date time.Time, filter attendance.Filter) (attendance.Board, error) {
	if ownerID == "" {
		return attendance.Board{}, appErrors.ErrUnauthorized
	}

	start := time.Now()
	students, err := s.students.ListByOwner(ctx, ownerID)
	s.metrics.ObserveDBQuery("students_by_owner", time.Since(start))
	if err != nil {
		s.logger.Error("load roster failed", zap.String("owner_id", ownerID), zap.Error(err))
		return attendance.Board{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	start = time.Now()
	records, err := s.records.ListByDate(ctx, ownerID, date)
	s.metrics.ObserveDBQuery("attendance_by_date", time.Since(start))
	if err != nil {
		s.logger.Error("load attendance failed", zap.String("owner_id", ownerID), zap.Time("date", date), zap.Error(err))
		return attendance.Board{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	board := attendance.NewBoard(date, students, records, filter)
	s.reportAnomalies(ownerID, board.Anomalies)
	return board, nil
}

// Daily returns the roster view for a day: visible rows, class summary and class list.
func (s *AttendanceService) Daily(ctx context.Context, ownerID string, query dto.DailyQuery) (*dto.DailySheet, error) {
	date, err := s.dayOrToday(query.Date)
	if err != nil {
		return nil, err
	}
	board, err := s.LoadBoard(ctx, ownerID, date, attendance.Filter{Search: query.Search, Class: query.Class})
	if err != nil {
		return nil, err
	}

	summary, anomalies := board.Summary()
	s.reportAnomalies(ownerID, anomalies)

	visible := board.Visible()
	rows := make([]dto.DailyRow, 0, len(visible))
	for _, student := range visible {
		row := dto.DailyRow{Student: student}
		if record, ok := board.Day[student.ID]; ok {
			status := record.Status
			row.Status = &status
			row.RecordID = record.ID
		}
		rows = append(rows, row)
	}

	return &dto.DailySheet{
		Date:      summary.Date,
		Rows:      rows,
		Summary:   summary,
		Classes:   attendance.Classes(board.Students),
		Anomalies: append(append([]attendance.Anomaly(nil), board.Anomalies...), anomalies...),
	}, nil
}

// Summary returns the day's counts for a class scope; empty class means all students.
func (s *AttendanceService) Summary(ctx context.Context, ownerID, rawDate, class string) (*attendance.DailySummary, bool, error) {
	if ownerID == "" {
		return nil, false, appErrors.ErrUnauthorized
	}
	date, err := s.dayOrToday(rawDate)
	if err != nil {
		return nil, false, err
	}

	key := OwnerKey(ownerID, "summary", date.Format(models.DateLayout), class)
	var cached attendance.DailySummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	board, err := s.LoadBoard(ctx, ownerID, date, attendance.Filter{Class: class})
	if err != nil {
		return nil, false, err
	}
	summary, anomalies := board.Summary()
	s.reportAnomalies(ownerID, anomalies)

	s.cache.Set(ctx, key, summary, 0)
	return &summary, false, nil
}

// Mark sets a student's status for a day. The write is an insert when the
// student has no record that day and an update of that record otherwise.
// Nothing is written without a signed-in actor.
func (s *AttendanceService) Mark(ctx context.Context, actorID string, req models.MarkAttendanceRequest) (*dto.MarkResult, error) {
	if actorID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if _, err := s.students.FindByID(ctx, actorID, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	filter := attendance.Filter{Class: req.Class}
	board, err := s.LoadBoard(ctx, actorID, date, filter)
	if err != nil {
		return nil, err
	}

	decision, err := board.Decide(attendance.MarkInput{
		StudentID: req.StudentID,
		Date:      date,
		Status:    models.AttendanceStatus(req.Status),
		Notes:     req.Notes,
		Actor:     actorID,
	})
	if err != nil {
		return nil, decisionError(err)
	}

	if err := s.write(ctx, &decision); err != nil {
		return nil, err
	}
	s.metrics.RecordMark(decision.Action)
	// Failures are logged and counted; stale entries live until the TTL.
	_ = s.cache.InvalidateOwner(ctx, actorID)

	refreshed, err := s.LoadBoard(ctx, actorID, date, filter)
	if err != nil {
		s.logger.Warn("refresh after mark failed; using local board", zap.String("record_id", decision.RecordID), zap.Error(err))
		refreshed = board.Apply(decision)
	}
	summary, anomalies := refreshed.Summary()
	s.reportAnomalies(actorID, anomalies)

	return &dto.MarkResult{Decision: decision, Summary: summary}, nil
}

// Report tallies attendance per student and per class over a range. The
// search term matches names and student identifiers only.
func (s *AttendanceService) Report(ctx context.Context, ownerID string, query dto.ReportQuery) (*dto.Report, bool, error) {
	if ownerID == "" {
		return nil, false, appErrors.ErrUnauthorized
	}
	rng, err := s.parseRange(query.From, query.To)
	if err != nil {
		return nil, false, err
	}
	from, to := rng.From.Format(models.DateLayout), rng.To.Format(models.DateLayout)

	key := OwnerKey(ownerID, "report", from, to, query.Class, query.Search)
	var cached dto.Report
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	students, err := s.students.ListByOwner(ctx, ownerID)
	s.metrics.ObserveDBQuery("students_by_owner", time.Since(start))
	if err != nil {
		s.logger.Error("load roster failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	start = time.Now()
	records, err := s.records.ListByRange(ctx, ownerID, rng, "")
	s.metrics.ObserveDBQuery("attendance_by_range", time.Since(start))
	if err != nil {
		s.logger.Error("load attendance range failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	visible := attendance.Filter{Search: query.Search, Class: query.Class}.Apply(students)
	stats, anomalies := attendance.ByStudent(visible, records)
	s.reportAnomalies(ownerID, anomalies)
	classes, _ := attendance.ClassStats(visible, records)

	rows := make([]dto.ReportRow, len(visible))
	for i, student := range visible {
		rows[i] = dto.ReportRow{Student: student, Stats: stats[i], RateLabel: stats[i].RateLabel()}
	}

	report := dto.Report{
		From:      from,
		To:        to,
		Rows:      rows,
		Classes:   classes,
		Totals:    attendance.Totals(stats),
		Anomalies: anomalies,
	}
	s.cache.Set(ctx, key, report, 0)
	return &report, false, nil
}

// StudentStats tallies one student's attendance over a range.
func (s *AttendanceService) StudentStats(ctx context.Context, ownerID, studentID, rawFrom, rawTo string) (*dto.StudentStatsResult, error) {
	if ownerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	rng, err := s.parseRange(rawFrom, rawTo)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, ownerID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	start := time.Now()
	records, err := s.records.ListByRange(ctx, ownerID, rng, student.ID)
	s.metrics.ObserveDBQuery("attendance_by_student", time.Since(start))
	if err != nil {
		s.logger.Error("load student attendance failed", zap.String("student_id", student.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	stats, anomalies := attendance.StudentStats(student.ID, records)
	s.reportAnomalies(ownerID, anomalies)

	return &dto.StudentStatsResult{
		Student:   *student,
		From:      rng.From.Format(models.DateLayout),
		To:        rng.To.Format(models.DateLayout),
		Stats:     stats,
		RateLabel: stats.RateLabel(),
		Anomalies: anomalies,
	}, nil
}

// write performs the decided insert or update. On failure nothing is
// invalidated and the caller's board stays as it was.
func (s *AttendanceService) write(ctx context.Context, decision *attendance.Decision) error {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("attendance_"+string(decision.Action), time.Since(start)) }()

	switch decision.Action {
	case attendance.ActionInsert:
		record := decision.Record
		if err := s.records.Insert(ctx, &record); err != nil {
			s.logger.Error("insert attendance failed", zap.String("student_id", record.StudentID), zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
		}
		decision.Record = record
		decision.RecordID = record.ID
	case attendance.ActionUpdate:
		if err := s.records.UpdateStatus(ctx, decision.RecordID, decision.Record.Status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrConflict, "attendance record no longer exists")
			}
			s.logger.Error("update attendance failed", zap.String("record_id", decision.RecordID), zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
		}
	}
	return nil
}

func (s *AttendanceService) reportAnomalies(ownerID string, anomalies []attendance.Anomaly) {
	for _, a := range anomalies {
		s.logger.Warn("attendance anomaly",
			zap.String("owner_id", ownerID),
			zap.String("kind", string(a.Kind)),
			zap.String("record_id", a.RecordID),
			zap.String("student_id", a.StudentID),
			zap.String("date", a.Date),
			zap.String("value", a.Value),
		)
		s.metrics.RecordAnomaly(a.Kind)
	}
}

func (s *AttendanceService) dayOrToday(raw string) (time.Time, error) {
	if raw == "" {
		return models.Today(s.now()), nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return date, nil
}

func (s *AttendanceService) parseRange(rawFrom, rawTo string) (models.DateRange, error) {
	rng := models.MonthToDate(s.now())
	if rawFrom != "" {
		from, err := models.ParseDate(rawFrom)
		if err != nil {
			return rng, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		rng.From = from
	}
	if rawTo != "" {
		to, err := models.ParseDate(rawTo)
		if err != nil {
			return rng, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		rng.To = to
	}
	if rng.To.Before(rng.From) {
		return rng, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	return rng, nil
}

func decisionError(err error) error {
	switch {
	case errors.Is(err, attendance.ErrNoSession):
		return appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
	case errors.Is(err, attendance.ErrInvalidStatus):
		return appErrors.Clone(appErrors.ErrValidation, "status must be present, absent or late")
	case errors.Is(err, attendance.ErrDayMismatch):
		return appErrors.Clone(appErrors.ErrConflict, "existing record belongs to a different day")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide attendance write")
	}
}
