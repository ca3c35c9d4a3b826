package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
)

// TransportController handles route and bus operations
type TransportController struct {
	transportService services.TransportService
}

// NewTransportController creates a new TransportController
func NewTransportController(transportService services.TransportService) *TransportController {
	return &TransportController{transportService: transportService}
}

// CreateRoute adds a bus route
// @Summary Create a route
// @Tags transport
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRouteRequest true "Route information"
// @Success 201 {object} dto.StructuredResponse{data=dto.RouteResponse} "Route created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Route already exists"
// @Router /routes [post]
func (c *TransportController) CreateRoute(ctx *gin.Context) {
	var req dto.CreateRouteRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	route, err := c.transportService.CreateRoute(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromRoute(route), "Route created"))
}

// GetRoutes lists the school's bus routes
// @Summary List routes
// @Tags transport
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.RouteResponse} "Routes"
// @Router /routes [get]
func (c *TransportController) GetRoutes(ctx *gin.Context) {
	routes, err := c.transportService.GetRoutes(ctx.Request.Context(), middleware.ActiveSchoolID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.RouteResponse, 0, len(routes))
	for _, route := range routes {
		out = append(out, dto.FromRoute(route))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Routes"))
}

// UpdateRoute rewrites a bus route
// @Summary Update a route
// @Tags transport
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Route ID"
// @Param request body dto.CreateRouteRequest true "Updated route information"
// @Success 200 {object} dto.StructuredResponse{data=dto.RouteResponse} "Route updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Route not found"
// @Router /routes/{id} [put]
func (c *TransportController) UpdateRoute(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "route ID")
	if !ok {
		return
	}

	var req dto.CreateRouteRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	route, err := c.transportService.UpdateRoute(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromRoute(route), "Route updated"))
}

// DeleteRoute removes a route without buses assigned
// @Summary Delete a route
// @Description Fails with a conflict when buses are still assigned to the route
// @Tags transport
// @Produce json
// @Security BearerAuth
// @Param id path int true "Route ID"
// @Success 200 {object} dto.StructuredResponse "Route deleted"
// @Failure 404 {object} dto.ErrorResponse "Route not found"
// @Failure 409 {object} dto.ErrorResponse "Route has buses assigned"
// @Router /routes/{id} [delete]
func (c *TransportController) DeleteRoute(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "route ID")
	if !ok {
		return
	}

	if err := c.transportService.DeleteRoute(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Route deleted"))
}

// CreateBus assigns a new bus to a route
// @Summary Create a bus
// @Tags transport
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBusRequest true "Bus information"
// @Success 201 {object} dto.StructuredResponse{data=dto.BusResponse} "Bus created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Route not found"
// @Failure 409 {object} dto.ErrorResponse "Bus already exists"
// @Router /buses [post]
func (c *TransportController) CreateBus(ctx *gin.Context) {
	var req dto.CreateBusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	bus, err := c.transportService.CreateBus(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromBus(bus), "Bus created"))
}

// GetBuses lists the school's buses with their routes
// @Summary List buses
// @Tags transport
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.BusResponse} "Buses"
// @Router /buses [get]
func (c *TransportController) GetBuses(ctx *gin.Context) {
	buses, err := c.transportService.GetBuses(ctx.Request.Context(), middleware.ActiveSchoolID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.BusResponse, 0, len(buses))
	for _, bus := range buses {
		out = append(out, dto.FromBus(bus))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Buses"))
}

// UpdateBus rewrites a bus assignment
// @Summary Update a bus
// @Tags transport
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bus ID"
// @Param request body dto.CreateBusRequest true "Updated bus information"
// @Success 200 {object} dto.StructuredResponse{data=dto.BusResponse} "Bus updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Bus not found"
// @Router /buses/{id} [put]
func (c *TransportController) UpdateBus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "bus ID")
	if !ok {
		return
	}

	var req dto.CreateBusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	bus, err := c.transportService.UpdateBus(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.FromBus(bus), "Bus updated"))
}

// DeleteBus removes a bus
// @Summary Delete a bus
// @Tags transport
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bus ID"
// @Success 200 {object} dto.StructuredResponse "Bus deleted"
// @Failure 404 {object} dto.ErrorResponse "Bus not found"
// @Router /buses/{id} [delete]
func (c *TransportController) DeleteBus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "bus ID")
	if !ok {
		return
	}

	if err := c.transportService.DeleteBus(ctx.Request.Context(), middleware.ActiveSchoolID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Bus deleted"))
}
