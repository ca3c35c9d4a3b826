package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/auth"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/app/services"
	"github.com/skulz/skubackend/internal/middleware"
)

// AuthController handles authentication and session operations
type AuthController struct {
	authService   services.AuthService
	tenantService services.TenantService
	memberships   *repositories.MembershipRepository
	schools       *repositories.SchoolRepository
}

// NewAuthController creates a new AuthController
func NewAuthController(
	authService services.AuthService,
	tenantService services.TenantService,
	memberships *repositories.MembershipRepository,
	schools *repositories.SchoolRepository,
) *AuthController {
	return &AuthController{
		authService:   authService,
		tenantService: tenantService,
		memberships:   memberships,
		schools:       schools,
	}
}

// Register handles staff account creation
// @Summary Register a staff account
// @Description Creates a staff account and provisions memberships in every active school
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration information"
// @Success 201 {object} dto.StructuredResponse{data=dto.UserResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.FromUser(user), "Account created"))
}

// Login handles credential verification and session creation
// @Summary Log in
// @Description Verifies credentials, opens a server-side session and resolves the active school
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.StructuredResponse{data=dto.AuthResponse} "Logged in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: result.Token,
			TokenType:   "Bearer",
			ExpiresIn:   result.ExpiresIn,
		},
		User: dto.FromUser(result.User),
	}
	if result.Resolution != nil && result.Resolution.SchoolID != nil {
		school, err := c.schools.GetByID(ctx.Request.Context(), *result.Resolution.SchoolID)
		if err == nil {
			resp.School = dto.BriefFromSchool(school)
		}
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Logged in"))
}

// Logout flushes the caller's session
// @Summary Log out
// @Description Deletes the server-side session, invalidating the access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	session := middleware.CurrentSession(ctx)
	if session == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), session.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Logged out"))
}

// Me returns the caller's profile and resolved session state
// @Summary Current session
// @Description Returns the caller's profile, active school and session expiry
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.SessionResponse} "Session state"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	session := middleware.CurrentSession(ctx)
	if user == nil || session == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	resp := dto.SessionResponse{
		User:       dto.FromUser(user),
		ExpiresAt:  session.ExpiresAt,
		LastSeenAt: session.LastSeenAt,
	}
	if session.SchoolID != nil {
		school, err := c.schools.GetByID(ctx.Request.Context(), *session.SchoolID)
		if err == nil {
			resp.School = dto.BriefFromSchool(school)
		}
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Session state"))
}

// GetMemberships lists the caller's school memberships
// @Summary List memberships
// @Description Lists the caller's active school memberships, primary first
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.MembershipResponse} "Memberships"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/memberships [get]
func (c *AuthController) GetMemberships(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	memberships, err := c.memberships.ListActiveByUser(ctx.Request.Context(), user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, dto.FromMembership(m))
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(out, "Memberships"))
}

// SelectSchool pins the session to one of the caller's schools
// @Summary Select active school
// @Description Binds the session to the given school if the caller belongs to it and the school is eligible
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SelectSchoolRequest true "School selection"
// @Success 200 {object} dto.StructuredResponse{data=dto.SchoolBrief} "School selected"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "School not eligible"
// @Router /auth/select-school [post]
func (c *AuthController) SelectSchool(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	session := middleware.CurrentSession(ctx)
	if user == nil || session == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.SelectSchoolRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.tenantService.SelectSchool(ctx.Request.Context(), session, user.ID, req.SchoolID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	school, err := c.schools.GetByID(ctx.Request.Context(), req.SchoolID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.BriefFromSchool(school), "School selected"))
}

// PortalHome redirects the caller to their role's portal landing page
// @Summary Portal entry point
// @Description Redirects to the landing page matching the caller's role
// @Tags portal
// @Security BearerAuth
// @Success 302 "Redirect to role landing page"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /portal [get]
func (c *AuthController) PortalHome(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	ctx.Redirect(http.StatusFound, auth.PortalPathFor(auth.RoleOf(user), user.IsSuperuser))
}
