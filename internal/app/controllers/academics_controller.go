package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
)

// AcademicsController handles grade and subject catalog operations
type AcademicsController struct {
	academicsService services.AcademicsService
}

// NewAcademicsController creates a new AcademicsController
func NewAcademicsController(academicsService services.AcademicsService) *AcademicsController {
	return &AcademicsController{academicsService: academicsService}
}

// CreateGrade adds a class level
// @Summary Create a grade
// @Tags academics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGradeRequest true "Grade information"
// @Success 201 {object} dto.StructuredResponse{data=dto.GradeResponse} "Grade created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Grade already exists"
// @Router /grades [post]
func (c *AcademicsController) CreateGrade(ctx *gin.Context) {
	var req dto.CreateGradeRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	grade, err := c.academicsService.CreateGrade(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromGrade(grade), "Grade created"))
}

// GetGrades lists the school's class levels
// @Summary List grades
// @Tags academics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.GradeResponse} "Grades"
// @Router /grades [get]
func (c *AcademicsController) GetGrades(ctx *gin.Context) {
	grades, err := c.academicsService.GetGrades(ctx.Request.Context(), middleware.ActiveSchoolID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.GradeResponse, 0, len(grades))
	for _, grade := range grades {
		out = append(out, dto.FromGrade(grade))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Grades"))
}

// UpdateGrade renames a class level
// @Summary Update a grade
// @Tags academics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Param request body dto.CreateGradeRequest true "Updated grade information"
// @Success 200 {object} dto.StructuredResponse{data=dto.GradeResponse} "Grade updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Grade not found"
// @Router /grades/{id} [put]
func (c *AcademicsController) UpdateGrade(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "grade ID")
	if !ok {
		return
	}

	var req dto.CreateGradeRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	grade, err := c.academicsService.UpdateGrade(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromGrade(grade), "Grade updated"))
}

// DeleteGrade removes a class level
// @Summary Delete a grade
// @Tags academics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Success 200 {object} dto.StructuredResponse "Grade deleted"
// @Failure 404 {object} dto.ErrorResponse "Grade not found"
// @Router /grades/{id} [delete]
func (c *AcademicsController) DeleteGrade(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "grade ID")
	if !ok {
		return
	}

	if err := c.academicsService.DeleteGrade(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Grade deleted"))
}

// CreateSubject adds a taught subject
// @Summary Create a subject
// @Tags academics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubjectRequest true "Subject information"
// @Success 201 {object} dto.StructuredResponse{data=dto.SubjectResponse} "Subject created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Subject already exists"
// @Router /subjects [post]
func (c *AcademicsController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	subject, err := c.academicsService.CreateSubject(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromSubject(subject), "Subject created"))
}

// GetSubjects lists the school's taught subjects
// @Summary List subjects
// @Tags academics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.SubjectResponse} "Subjects"
// @Router /subjects [get]
func (c *AcademicsController) GetSubjects(ctx *gin.Context) {
	subjects, err := c.academicsService.GetSubjects(ctx.Request.Context(), middleware.ActiveSchoolID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, dto.FromSubject(subject))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Subjects"))
}

// UpdateSubject renames a taught subject
// @Summary Update a subject
// @Tags academics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Param request body dto.CreateSubjectRequest true "Updated subject information"
// @Success 200 {object} dto.StructuredResponse{data=dto.SubjectResponse} "Subject updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [put]
func (c *AcademicsController) UpdateSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "subject ID")
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	subject, err := c.academicsService.UpdateSubject(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromSubject(subject), "Subject updated"))
}

// DeleteSubject removes a taught subject
// @Summary Delete a subject
// @Tags academics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.StructuredResponse "Subject deleted"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [delete]
func (c *AcademicsController) DeleteSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "subject ID")
	if !ok {
		return
	}

	if err := c.academicsService.DeleteSubject(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Subject deleted"))
}
