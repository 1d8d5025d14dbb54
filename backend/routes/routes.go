package routes

import (
	"admissions/backend/config"
	"admissions/backend/controllers"
	"admissions/backend/middleware"
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AppConfig is the fiber configuration of the API. The proxy header is only
// believed when it comes from one of the trusted proxies.
func AppConfig(cfg *config.Config) fiber.Config {
	appConfig := fiber.Config{
		AppName:      "admissions",
		ErrorHandler: utils.ErrorHandler,
	}
	if len(cfg.TrustedProxies) > 0 && cfg.ProxyHeader != "" {
		appConfig.ProxyHeader = cfg.ProxyHeader
		appConfig.EnableTrustedProxyCheck = true
		appConfig.TrustedProxies = cfg.TrustedProxies
		appConfig.EnableIPValidation = true
	}
	return appConfig
}

func SetupRoutes(app *fiber.App, svc *services.Services, cfg *config.Config, limiter middleware.Limiter) {
	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg, svc)
	adminMiddleware := middleware.AdminMiddleware()
	loginLimit := middleware.RateLimit(limiter, "login:", middleware.ClientIP, cfg.LoginRateLimit, cfg.LoginRateWindow)

	// Auth routes
	authController := controllers.NewAuthController(svc, cfg)
	app.Post("/api/auth/login", loginLimit, authController.Login)

	// User routes
	userController := controllers.NewUserController(svc, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/enrollments", authMiddleware, userController.MyEnrollments)

	// Enrollment routes
	enrollmentController := controllers.NewEnrollmentController(svc)
	app.Get("/api/enrollments", enrollmentController.ListEnrollments)
	app.Get("/api/enrollments/:id", enrollmentController.GetEnrollment)
	app.Post("/api/enrollments/:id/register", authMiddleware, enrollmentController.Register)

	// Courses routes
	coursesController := controllers.NewCoursesController(svc)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/mine", coursesController.GetUserCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Get("/:id/sections", coursesController.ListSections)
	app.Get("/api/sections/:id/lessons", authMiddleware, coursesController.ListLessons)

	// Activity routes
	activityController := controllers.NewActivityController(svc)
	app.Get("/api/activities", activityController.ListActivities)
	app.Get("/api/activities/:id", activityController.GetActivity)
	app.Post("/api/activities/:id/signup", authMiddleware, activityController.SignUp)
	app.Delete("/api/activities/:id/signup", authMiddleware, activityController.Withdraw)

	// Interview routes
	interviewController := controllers.NewInterviewController(svc)
	app.Get("/api/interviews", authMiddleware, interviewController.ListInterviews)
	app.Put("/api/interviews/:id", authMiddleware, interviewController.ScoreInterview)

	// Alumni routes
	alumniController := controllers.NewAlumniController(svc)
	app.Get("/api/alumni", authMiddleware, alumniController.ListFellows)
	app.Get("/api/alumni/:id", authMiddleware, alumniController.GetFellow)

	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)

	// Admin routes for enrollments
	admin.Get("/enrollments", enrollmentController.ListEnrollments)
	admin.Post("/enrollments", enrollmentController.CreateEnrollment)
	admin.Delete("/enrollments", enrollmentController.DeleteEnrollments)
	admin.Put("/enrollments/:id", enrollmentController.UpdateEnrollment)
	admin.Delete("/enrollments/:id", enrollmentController.DeleteEnrollment)
	admin.Post("/enrollments/:id/restore", enrollmentController.RestoreEnrollment)
	admin.Get("/enrollments/:id/stats", enrollmentController.Stats)

	// Admin routes for candidacies and interviews
	candidacyController := controllers.NewCandidacyController(svc)
	admin.Get("/candidacies", candidacyController.ListCandidacies)
	admin.Delete("/candidacies/:id", candidacyController.DeleteCandidacy)
	admin.Post("/interviews", interviewController.AssignInterview)
	admin.Delete("/interviews", interviewController.DeleteInterviews)

	// Admin routes for course content
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Delete("/courses/:id", coursesController.DeleteCourse)
	admin.Post("/sections", coursesController.CreateSection)
	admin.Put("/sections/:id", coursesController.UpdateSection)
	admin.Delete("/sections/:id", coursesController.DeleteSection)
	admin.Post("/lessons", coursesController.CreateLesson)
	admin.Put("/lessons/:id", coursesController.UpdateLesson)
	admin.Delete("/lessons/:id", coursesController.DeleteLesson)

	// Admin routes for activities
	admin.Post("/activities", activityController.CreateActivity)
	admin.Put("/activities/:id", activityController.UpdateActivity)
	admin.Delete("/activities/:id", activityController.DeleteActivity)
	admin.Get("/activities/:id/signups", activityController.ListSignups)

	// Admin routes for users and managers
	admin.Get("/users", userController.ListUsers)
	admin.Put("/users/:id", userController.UpdateUser)
	admin.Delete("/users/:id", userController.DeleteUser)
	admin.Post("/users/:id/restore", userController.RestoreUser)

	managerController := controllers.NewManagerController(svc)
	admin.Get("/managers", managerController.ListManagers)
	admin.Put("/managers/:id/privileges", managerController.ChangePrivileges)
	admin.Delete("/managers/:id", managerController.DemoteManager)
}
