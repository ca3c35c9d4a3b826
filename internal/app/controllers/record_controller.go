package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
	"github.com/skulz/skubackend/internal/pkg/validation"
)

// RecordController handles document record operations
type RecordController struct {
	recordService services.RecordService
}

// NewRecordController creates a new RecordController
func NewRecordController(recordService services.RecordService) *RecordController {
	return &RecordController{recordService: recordService}
}

// Upload attaches a document to a student or a pending onboarding request
// @Summary Upload a record
// @Description Stores the file and attaches it to exactly one owner. Form fields: file, recordType, description, studentId or onboardingRequestId.
// @Tags records
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document file"
// @Param recordType formData string true "Record type" Enums(birth_certificate, vaccination, medical_report, previous_school, identity_proof, other)
// @Param studentId formData int false "Owning student"
// @Param onboardingRequestId formData int false "Owning onboarding request"
// @Param description formData string false "Description"
// @Success 201 {object} dto.StructuredResponse{data=dto.RecordResponse} "Record uploaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Owner not found"
// @Failure 409 {object} dto.ErrorResponse "Onboarding request is not pending"
// @Router /records [post]
func (c *RecordController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Document file is required").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	req := dto.CreateRecordRequest{
		RecordType: models.RecordType(ctx.PostForm("recordType")),
	}
	if raw := ctx.PostForm("studentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid studentId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		req.StudentID = &id
	}
	if raw := ctx.PostForm("onboardingRequestId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid onboardingRequestId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		req.OnboardingRequestID = &id
	}
	if description := ctx.PostForm("description"); description != "" {
		req.Description = &description
	}

	if fieldErrors := validation.Struct(&req); len(fieldErrors) > 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithDetails(fieldErrors)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	record, err := c.recordService.Upload(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromRecord(record), "Record uploaded"))
}

// Get retrieves one record
// @Summary Get record by ID
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.RecordResponse} "Record"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /records/{id} [get]
func (c *RecordController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "record ID")
	if !ok {
		return
	}

	record, err := c.recordService.Get(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromRecord(record), "Record"))
}

// ListByStudent lists the records of an enrolled student
// @Summary List student records
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=[]dto.RecordResponse} "Records"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/records [get]
func (c *RecordController) ListByStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "student ID")
	if !ok {
		return
	}

	records, err := c.recordService.ListByStudent(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(recordResponses(records), "Records"))
}

// ListByOnboarding lists the records staged on an onboarding request
// @Summary List onboarding records
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Onboarding request ID"
// @Success 200 {object} dto.StructuredResponse{data=[]dto.RecordResponse} "Records"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /onboarding/{id}/records [get]
func (c *RecordController) ListByOnboarding(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "request ID")
	if !ok {
		return
	}

	records, err := c.recordService.ListByOnboarding(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(recordResponses(records), "Records"))
}

// Delete removes a record and its stored file
// @Summary Delete a record
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} dto.StructuredResponse "Record deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /records/{id} [delete]
func (c *RecordController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "record ID")
	if !ok {
		return
	}

	err := c.recordService.Delete(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Record deleted"))
}

func recordResponses(records []*models.Record) []dto.RecordResponse {
	out := make([]dto.RecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, dto.FromRecord(record))
	}
	return out
}
