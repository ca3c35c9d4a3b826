package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
	"github.com/skulz/skubackend/internal/pkg/helpers"
)

// StudentController handles enrolled student operations
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// CreateStudent enrolls a student directly
// @Summary Enroll a student directly
// @Description Creates a student bypassing the onboarding workflow. Admin only.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.StructuredResponse{data=dto.StudentResponse} "Student enrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Student already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromStudent(student), "Student enrolled"))
}

// GetStudent retrieves one student with relations populated
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentResponse} "Student"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student ID")
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromStudent(student), "Student"))
}

// ListStudents returns a filtered page of students
// @Summary List students
// @Description Lists students with optional grade, bus, activity and search filters
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param gradeId query int false "Filter by grade"
// @Param busId query int false "Filter by bus"
// @Param isActive query bool false "Filter by active flag"
// @Param search query string false "Search in name and email"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param sortBy query string false "Sort field" Enums(firstName, lastName, email, enrollmentDate, createdAt)
// @Param sortDesc query bool false "Sort descending"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse} "Students"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter parameters"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	var req dto.StudentFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter parameters").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	filter := repositories.StudentFilter{
		GradeID:  req.GradeID,
		BusID:    req.BusID,
		IsActive: req.IsActive,
		Search:   req.Search,
		Page:     req.Page,
		Size:     req.Size,
		SortBy:   req.SortBy,
		SortDesc: req.SortDesc,
	}

	students, total, err := c.studentService.List(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.FromStudent(student))
	}

	resp := dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, req.Page, req.Size),
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Students"))
}

// UpdateStudent rewrites a student's profile and relation sets
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Updated student information"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentResponse} "Student updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student ID")
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromStudent(student), "Student updated"))
}

// DeleteStudent removes a student
// @Summary Delete a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse "Student deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student ID")
	if !ok {
		return
	}

	err := c.studentService.Delete(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Student deleted"))
}

// UploadPhoto stores a student's profile photo
// @Summary Upload student photo
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} dto.StructuredResponse "Photo uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing photo file"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/photo [post]
func (c *StudentController) UploadPhoto(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student ID")
	if !ok {
		return
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Photo file is required").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	photoURL, err := c.studentService.UploadPhoto(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(gin.H{"photoUrl": photoURL}, "Photo uploaded"))
}
