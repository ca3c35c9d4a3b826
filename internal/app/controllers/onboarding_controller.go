package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
	"github.com/skulz/skubackend/internal/pkg/helpers"
)

// OnboardingController handles the student onboarding workflow
type OnboardingController struct {
	onboardingService services.OnboardingService
}

// NewOnboardingController creates a new OnboardingController
func NewOnboardingController(onboardingService services.OnboardingService) *OnboardingController {
	return &OnboardingController{onboardingService: onboardingService}
}

// Submit stages a prospective student for approval
// @Summary Submit an onboarding request
// @Description Stages a prospective student. Teachers and operators only.
// @Tags onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitOnboardingRequest true "Candidate information"
// @Success 201 {object} dto.StructuredResponse{data=dto.OnboardingResponse} "Request submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Role cannot submit"
// @Router /onboarding [post]
func (c *OnboardingController) Submit(ctx *gin.Context) {
	var req dto.SubmitOnboardingRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	request, err := c.onboardingService.Submit(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromOnboardingRequest(request), "Request submitted"))
}

// Get retrieves one onboarding request
// @Summary Get onboarding request by ID
// @Description Visible to the requester, approvers and superusers
// @Tags onboarding
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.OnboardingResponse} "Request"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /onboarding/{id} [get]
func (c *OnboardingController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "request ID")
	if !ok {
		return
	}

	request, err := c.onboardingService.Get(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromOnboardingRequest(request), "Request"))
}

// List returns a filtered page of onboarding requests
// @Summary List onboarding requests
// @Description Approvers see every request; other callers see only their own
// @Tags onboarding
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, rejected, completed)
// @Param requestedBy query int false "Filter by submitter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse} "Requests"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter parameters"
// @Router /onboarding [get]
func (c *OnboardingController) List(ctx *gin.Context) {
	var req dto.OnboardingFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter parameters").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	filter := repositories.OnboardingFilter{
		RequestedBy: req.RequestedBy,
		Page:        req.Page,
		Size:        req.Size,
	}
	if req.Status != nil {
		status := models.OnboardingStatus(*req.Status)
		filter.Status = &status
	}

	requests, total, err := c.onboardingService.List(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.OnboardingResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, dto.FromOnboardingRequest(request))
	}

	resp := dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, req.Page, req.Size),
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Requests"))
}

// Approve converts a pending request into an enrolled student
// @Summary Approve an onboarding request
// @Description Atomically creates the student, copies relation sets and relinks staged records. Approver roles only.
// @Tags onboarding
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.ApprovalResponse} "Request approved"
// @Failure 403 {object} dto.ErrorResponse "Role cannot approve"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request is not pending"
// @Router /onboarding/{id}/approve [post]
func (c *OnboardingController) Approve(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "request ID")
	if !ok {
		return
	}

	request, student, err := c.onboardingService.Approve(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.ApprovalResponse{
		Request: dto.FromOnboardingRequest(request),
		Student: dto.FromStudent(student),
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Request approved"))
}

// Reject marks a pending request rejected
// @Summary Reject an onboarding request
// @Description Marks the request rejected with the reviewer's reason. Approver roles only.
// @Tags onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.RejectOnboardingRequest true "Rejection reason"
// @Success 200 {object} dto.StructuredResponse{data=dto.OnboardingResponse} "Request rejected"
// @Failure 400 {object} dto.ErrorResponse "Rejection reason missing"
// @Failure 403 {object} dto.ErrorResponse "Role cannot reject"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request is not pending"
// @Router /onboarding/{id}/reject [post]
func (c *OnboardingController) Reject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "request ID")
	if !ok {
		return
	}

	var req dto.RejectOnboardingRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	request, err := c.onboardingService.Reject(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromOnboardingRequest(request), "Request rejected"))
}

// UploadPhoto stores a candidate photo on a pending request
// @Summary Upload candidate photo
// @Description Stores a photo on a still-pending request; it carries over to the student on approval
// @Tags onboarding
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} dto.StructuredResponse "Photo uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing photo file"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Request is not pending"
// @Router /onboarding/{id}/photo [post]
func (c *OnboardingController) UploadPhoto(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "request ID")
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

	photoURL, err := c.onboardingService.UploadPhoto(ctx.Request.Context(), middleware.CurrentUser(ctx),
		middleware.ActiveSchoolID(ctx), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(gin.H{"photoUrl": photoURL}, "Photo uploaded"))
}
