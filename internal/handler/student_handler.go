package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, ownerID string, filter models.StudentFilter) ([]models.Student, error)
	Classes(ctx context.Context, ownerID string) ([]string, error)
	Create(ctx context.Context, ownerID string, req models.CreateStudentRequest) (*models.Student, error)
}

// StudentHandler exposes roster endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Matches name, student ID or class"
// @Param class query string false "Exact class label"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	filter := models.StudentFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Class:  strings.TrimSpace(c.Query("class")),
	}

	students, err := h.students.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students, map[string]interface{}{"total": len(students)})
}

// Classes godoc
// @Summary List class labels
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/classes [get]
func (h *StudentHandler) Classes(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	classes, err := h.students.Classes(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Create godoc
// @Summary Add a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	student, err := h.students.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
