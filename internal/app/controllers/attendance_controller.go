package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
)

// AttendanceController handles daily attendance operations
type AttendanceController struct {
	attendanceService services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendanceService: attendanceService}
}

// Mark records one student's attendance for a date
// @Summary Mark attendance
// @Description Records one mark; re-marking the same student and date overwrites the earlier status
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkAttendanceRequest true "Attendance mark"
// @Success 200 {object} dto.StructuredResponse{data=dto.AttendanceResponse} "Attendance marked"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Role cannot mark attendance"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /attendance [post]
func (c *AttendanceController) Mark(ctx *gin.Context) {
	var req dto.MarkAttendanceRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	mark, err := c.attendanceService.Mark(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromAttendance(mark), "Attendance marked"))
}

// MarkBulk records many students for one date
// @Summary Mark attendance in bulk
// @Description Records every entry for one date in a single statement
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkAttendanceRequest true "Bulk attendance marks"
// @Success 200 {object} dto.StructuredResponse "Attendance marked"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Role cannot mark attendance"
// @Router /attendance/bulk [post]
func (c *AttendanceController) MarkBulk(ctx *gin.Context) {
	var req dto.BulkAttendanceRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	err := c.attendanceService.MarkBulk(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Attendance marked"))
}

// GetByDate lists every mark for one date
// @Summary Attendance by date
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.StructuredResponse{data=[]dto.AttendanceResponse} "Attendance marks"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Router /attendance [get]
func (c *AttendanceController) GetByDate(ctx *gin.Context) {
	date := ctx.DefaultQuery("date", time.Now().Format("2006-01-02"))

	marks, err := c.attendanceService.GetByDate(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.AttendanceResponse, 0, len(marks))
	for _, mark := range marks {
		out = append(out, dto.FromAttendance(mark))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Attendance marks"))
}

// GetByStudent lists a student's marks, newest first
// @Summary Attendance by student
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=[]dto.AttendanceResponse} "Attendance marks"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/attendance [get]
func (c *AttendanceController) GetByStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student ID")
	if !ok {
		return
	}

	marks, err := c.attendanceService.GetByStudent(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.AttendanceResponse, 0, len(marks))
	for _, mark := range marks {
		out = append(out, dto.FromAttendance(mark))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Attendance marks"))
}

// GetSummary returns per-status counts for one date
// @Summary Attendance summary
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.StructuredResponse{data=models.AttendanceSummary} "Summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Router /attendance/summary [get]
func (c *AttendanceController) GetSummary(ctx *gin.Context) {
	date := ctx.DefaultQuery("date", time.Now().Format("2006-01-02"))

	summary, err := c.attendanceService.GetSummary(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(summary, "Summary"))
}
