package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type attendanceService interface {
	Daily(ctx context.Context, ownerID string, query dto.DailyQuery) (*dto.DailySheet, error)
	Summary(ctx context.Context, ownerID, rawDate, class string) (*attendance.DailySummary, bool, error)
	Mark(ctx context.Context, actorID string, req models.MarkAttendanceRequest) (*dto.MarkResult, error)
	Report(ctx context.Context, ownerID string, query dto.ReportQuery) (*dto.Report, bool, error)
	StudentStats(ctx context.Context, ownerID, studentID, rawFrom, rawTo string) (*dto.StudentStatsResult, error)
}

// AttendanceHandler exposes the daily sheet, marking and reports.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Daily godoc
// @Summary Daily attendance sheet
// @Description Roster with each student's status for one day. Search also matches class labels.
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param search query string false "Matches name, student ID or class"
// @Param class query string false "Exact class label"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/daily [get]
func (h *AttendanceHandler) Daily(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	var query dto.DailyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	sheet, err := h.service.Daily(c.Request.Context(), ownerID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sheet)
}

// Summary godoc
// @Summary Daily attendance counts
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param class query string false "Exact class label"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, hit, err := h.service.Summary(c.Request.Context(), ownerID, strings.TrimSpace(c.Query("date")), strings.TrimSpace(c.Query("class")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary, cachedMeta(c, hit))
}

// Mark godoc
// @Summary Mark attendance
// @Description Records a student's status for a day, updating the existing record when one exists.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.MarkAttendanceRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/mark [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	result, err := h.service.Mark(c.Request.Context(), actorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Report godoc
// @Summary Attendance report
// @Description Per-student and per-class tallies over a date range. Search matches name or student ID.
// @Tags Attendance
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD). Defaults to the first of the month"
// @Param to query string false "End date (YYYY-MM-DD). Defaults to today"
// @Param search query string false "Matches name or student ID"
// @Param class query string false "Exact class label"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/report [get]
func (h *AttendanceHandler) Report(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	report, hit, err := h.service.Report(c.Request.Context(), ownerID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report, cachedMeta(c, hit))
}

// StudentStats godoc
// @Summary Attendance tally for one student
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/students/{id}/stats [get]
func (h *AttendanceHandler) StudentStats(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.StudentStats(c.Request.Context(), ownerID, c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
