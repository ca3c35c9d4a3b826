package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
)

// ParentController handles guardian operations
type ParentController struct {
	parentService services.ParentService
}

// NewParentController creates a new ParentController
func NewParentController(parentService services.ParentService) *ParentController {
	return &ParentController{parentService: parentService}
}

// CreateParent registers a new guardian
// @Summary Create a guardian
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateParentRequest true "Guardian information"
// @Success 201 {object} dto.StructuredResponse{data=dto.ParentResponse} "Guardian created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Guardian already exists"
// @Router /parents [post]
func (c *ParentController) CreateParent(ctx *gin.Context) {
	var req dto.CreateParentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	parent, err := c.parentService.Create(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromParent(parent), "Guardian created"))
}

// GetParent retrieves one guardian
// @Summary Get guardian by ID
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Guardian ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.ParentResponse} "Guardian"
// @Failure 404 {object} dto.ErrorResponse "Guardian not found"
// @Router /parents/{id} [get]
func (c *ParentController) GetParent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "guardian ID")
	if !ok {
		return
	}

	parent, err := c.parentService.Get(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromParent(parent), "Guardian"))
}

// GetAllParents lists every guardian of the school
// @Summary List guardians
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.ParentResponse} "Guardians"
// @Router /parents [get]
func (c *ParentController) GetAllParents(ctx *gin.Context) {
	parents, err := c.parentService.GetAll(ctx.Request.Context(), middleware.ActiveSchoolID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.ParentResponse, 0, len(parents))
	for _, parent := range parents {
		out = append(out, dto.FromParent(parent))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Guardians"))
}

// UpdateParent changes a guardian's profile
// @Summary Update a guardian
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Guardian ID"
// @Param request body dto.UpdateParentRequest true "Updated guardian information"
// @Success 200 {object} dto.StructuredResponse{data=dto.ParentResponse} "Guardian updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Guardian not found"
// @Router /parents/{id} [put]
func (c *ParentController) UpdateParent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "guardian ID")
	if !ok {
		return
	}

	var req dto.UpdateParentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	parent, err := c.parentService.Update(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromParent(parent), "Guardian updated"))
}

// DeleteParent removes a guardian
// @Summary Delete a guardian
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Guardian ID"
// @Success 200 {object} dto.StructuredResponse "Guardian deleted"
// @Failure 404 {object} dto.ErrorResponse "Guardian not found"
// @Router /parents/{id} [delete]
func (c *ParentController) DeleteParent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "guardian ID")
	if !ok {
		return
	}

	if err := c.parentService.Delete(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Guardian deleted"))
}
