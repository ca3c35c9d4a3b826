package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
)

// SchoolController handles school and subscription administration
type SchoolController struct {
	schoolService services.SchoolService
}

// NewSchoolController creates a new SchoolController
func NewSchoolController(schoolService services.SchoolService) *SchoolController {
	return &SchoolController{schoolService: schoolService}
}

func parseIDParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label).
			WithDetails(label + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// CreateSchool registers a new school tenant
// @Summary Create a school
// @Description Registers a new school. Superuser only.
// @Tags schools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSchoolRequest true "School information"
// @Success 201 {object} dto.StructuredResponse{data=dto.SchoolResponse} "School created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "School already exists"
// @Router /schools [post]
func (c *SchoolController) CreateSchool(ctx *gin.Context) {
	var req dto.CreateSchoolRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	school, err := c.schoolService.Create(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromSchool(school), "School created"))
}

// GetSchool retrieves one school
// @Summary Get school by ID
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Param id path int true "School ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.SchoolResponse} "School"
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Router /schools/{id} [get]
func (c *SchoolController) GetSchool(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "school ID")
	if !ok {
		return
	}

	school, err := c.schoolService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromSchool(school), "School"))
}

// GetAllSchools lists every school
// @Summary List schools
// @Description Lists every registered school. Superuser only.
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.SchoolResponse} "Schools"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /schools [get]
func (c *SchoolController) GetAllSchools(ctx *gin.Context) {
	schools, err := c.schoolService.GetAll(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.SchoolResponse, 0, len(schools))
	for _, school := range schools {
		out = append(out, dto.FromSchool(school))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Schools"))
}

// UpdateSchool changes a school's profile
// @Summary Update a school
// @Description Updates a school's profile. Superuser only.
// @Tags schools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "School ID"
// @Param request body dto.UpdateSchoolRequest true "Updated school information"
// @Success 200 {object} dto.StructuredResponse{data=dto.SchoolResponse} "School updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Router /schools/{id} [put]
func (c *SchoolController) UpdateSchool(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "school ID")
	if !ok {
		return
	}

	var req dto.UpdateSchoolRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	school, err := c.schoolService.Update(ctx.Request.Context(), middleware.CurrentUser(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromSchool(school), "School updated"))
}

// SetSubscription creates or replaces a school's subscription
// @Summary Set school subscription
// @Description Creates or replaces the school's subscription. Superuser only.
// @Tags schools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "School ID"
// @Param request body dto.SetSubscriptionRequest true "Subscription terms"
// @Success 200 {object} dto.StructuredResponse "Subscription set"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Router /schools/{id}/subscription [put]
func (c *SchoolController) SetSubscription(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "school ID")
	if !ok {
		return
	}

	var req dto.SetSubscriptionRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	err := c.schoolService.SetSubscription(ctx.Request.Context(), middleware.CurrentUser(ctx),
		id, req.Plan, req.Status, req.MaxStudents, req.MaxUsers)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Subscription set"))
}
