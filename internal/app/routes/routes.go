package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/skulz/skubackend/internal/app/controllers"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/middleware"
)

// Controllers bundles every controller the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	School     *controllers.SchoolController
	Student    *controllers.StudentController
	Parent     *controllers.ParentController
	Academics  *controllers.AcademicsController
	Transport  *controllers.TransportController
	Attendance *controllers.AttendanceController
	Onboarding *controllers.OnboardingController
	Record     *controllers.RecordController
}

// SetupRouter configures all application routes. The /api/v1 surface
// serves JSON; the /portal surface is interactive and redirects on tenant
// resolution failures instead of returning errors.
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	tenantMiddleware *middleware.TenantMiddleware,
) {
	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	// Authenticated, not yet school-bound
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)
		authenticated.GET("/auth/me", ctrl.Auth.Me)
		authenticated.GET("/auth/memberships", ctrl.Auth.GetMemberships)
		authenticated.POST("/auth/select-school", ctrl.Auth.SelectSchool)
	}

	// School administration (superuser only)
	schools := v1.Group("/schools")
	schools.Use(authMiddleware.JWTAuth())
	{
		schools.GET("/:id", ctrl.School.GetSchool)

		schoolAdmin := schools.Group("")
		schoolAdmin.Use(authMiddleware.RequireSuperuser())
		{
			schoolAdmin.POST("", ctrl.School.CreateSchool)
			schoolAdmin.GET("", ctrl.School.GetAllSchools)
			schoolAdmin.PUT("/:id", ctrl.School.UpdateSchool)
			schoolAdmin.PUT("/:id/subscription", ctrl.School.SetSubscription)
		}
	}

	// School-scoped API routes. Tenant resolution runs in API mode:
	// failures surface as JSON, never redirects.
	scoped := v1.Group("")
	scoped.Use(authMiddleware.JWTAuth())
	scoped.Use(tenantMiddleware.ResolveTenant(false))
	scoped.Use(middleware.RequireSchool())
	{
		students := scoped.Group("/students")
		{
			students.POST("", ctrl.Student.CreateStudent)
			students.GET("", ctrl.Student.ListStudents)
			students.GET("/:id", ctrl.Student.GetStudent)
			students.PUT("/:id", ctrl.Student.UpdateStudent)
			students.DELETE("/:id", ctrl.Student.DeleteStudent)
			students.POST("/:id/photo", ctrl.Student.UploadPhoto)
			students.GET("/:id/attendance", ctrl.Attendance.GetByStudent)
			students.GET("/:id/records", ctrl.Record.ListByStudent)
		}

		parents := scoped.Group("/parents")
		{
			parents.POST("", ctrl.Parent.CreateParent)
			parents.GET("", ctrl.Parent.GetAllParents)
			parents.GET("/:id", ctrl.Parent.GetParent)
			parents.PUT("/:id", ctrl.Parent.UpdateParent)
			parents.DELETE("/:id", ctrl.Parent.DeleteParent)
		}

		grades := scoped.Group("/grades")
		{
			grades.POST("", ctrl.Academics.CreateGrade)
			grades.GET("", ctrl.Academics.GetGrades)
			grades.PUT("/:id", ctrl.Academics.UpdateGrade)
			grades.DELETE("/:id", ctrl.Academics.DeleteGrade)
		}

		subjects := scoped.Group("/subjects")
		{
			subjects.POST("", ctrl.Academics.CreateSubject)
			subjects.GET("", ctrl.Academics.GetSubjects)
			subjects.PUT("/:id", ctrl.Academics.UpdateSubject)
			subjects.DELETE("/:id", ctrl.Academics.DeleteSubject)
		}

		transportRoutes := scoped.Group("/routes")
		{
			transportRoutes.POST("", ctrl.Transport.CreateRoute)
			transportRoutes.GET("", ctrl.Transport.GetRoutes)
			transportRoutes.PUT("/:id", ctrl.Transport.UpdateRoute)
			transportRoutes.DELETE("/:id", ctrl.Transport.DeleteRoute)
		}

		buses := scoped.Group("/buses")
		{
			buses.POST("", ctrl.Transport.CreateBus)
			buses.GET("", ctrl.Transport.GetBuses)
			buses.PUT("/:id", ctrl.Transport.UpdateBus)
			buses.DELETE("/:id", ctrl.Transport.DeleteBus)
		}

		attendance := scoped.Group("/attendance")
		{
			attendance.POST("", ctrl.Attendance.Mark)
			attendance.POST("/bulk", ctrl.Attendance.MarkBulk)
			attendance.GET("", ctrl.Attendance.GetByDate)
			attendance.GET("/summary", ctrl.Attendance.GetSummary)
		}

		onboarding := scoped.Group("/onboarding")
		{
			onboarding.POST("", ctrl.Onboarding.Submit)
			onboarding.GET("", ctrl.Onboarding.List)
			onboarding.GET("/:id", ctrl.Onboarding.Get)
			onboarding.POST("/:id/approve", ctrl.Onboarding.Approve)
			onboarding.POST("/:id/reject", ctrl.Onboarding.Reject)
			onboarding.POST("/:id/photo", ctrl.Onboarding.UploadPhoto)
			onboarding.GET("/:id/records", ctrl.Record.ListByOnboarding)
		}

		records := scoped.Group("/records")
		{
			records.POST("", ctrl.Record.Upload)
			records.GET("/:id", ctrl.Record.Get)
			records.DELETE("/:id", ctrl.Record.Delete)
		}
	}

	// Portal pages reachable without a school binding: the sign-in prompt
	// and the school picker the interactive redirects land on.
	router.GET("/portal/login", func(c *gin.Context) {
		c.JSON(401, dto.NewStructuredResponse(gin.H{"loginUrl": "/api/v1/auth/login"}, "Sign in to continue"))
	})
	portalSelect := router.Group("/portal/select-school")
	portalSelect.Use(authMiddleware.JWTAuth())
	{
		portalSelect.GET("", ctrl.Auth.GetMemberships)
	}

	// Interactive portal surface. Tenant resolution runs in interactive
	// mode: stale or missing bindings redirect to login or selection.
	portal := router.Group("/portal")
	portal.Use(authMiddleware.JWTAuth())
	portal.Use(tenantMiddleware.ResolveTenant(true))
	{
		portal.GET("", ctrl.Auth.PortalHome)
		for _, page := range []string{"admin", "management", "operations", "teacher", "me"} {
			name := page
			portal.GET("/"+name, func(c *gin.Context) {
				c.JSON(200, dto.NewStructuredResponse(gin.H{"workspace": name}, "Workspace"))
			})
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewStructuredResponse(gin.H{"status": "ok"}, "OK"))
	})
}
