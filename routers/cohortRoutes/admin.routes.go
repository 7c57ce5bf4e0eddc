package cohortRoutes

import (
	controllers "trainhub/controllers/cohort"
	"trainhub/middleware"
	validators "trainhub/validators/cohort"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCohortRoutes sets up all admin curriculum management routes
func SetupAdminCohortRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/cohort")

	// Cohort management
	adminGroup.Post("/create", middleware.JWTMiddleware, validators.CreateCohortAdmin(), controllers.AdminCreateCohort)
	adminGroup.Put("/:id", middleware.JWTMiddleware, validators.UpdateCohortAdmin(), controllers.AdminUpdateCohort)
	adminGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.CohortID(), controllers.AdminCohortProgress)

	// Membership lifecycle
	adminGroup.Post("/membership/status", middleware.JWTMiddleware, validators.MembershipStatus(), controllers.AdminSetMembershipStatus)

	// Module management
	adminGroup.Post("/:id/module", middleware.JWTMiddleware, validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Post("/module/:module_id/release", middleware.JWTMiddleware, validators.ModuleID(), controllers.AdminReleaseModule)

	// Question management
	adminGroup.Post("/:id/question", middleware.JWTMiddleware, validators.CreateQuestionAdmin(), controllers.AdminCreateQuestion)

	questionGroup := app.Group("/admin/question")
	questionGroup.Put("/:question_id", middleware.JWTMiddleware, validators.UpdateQuestionAdmin(), controllers.AdminUpdateQuestion)
	questionGroup.Delete("/:question_id", middleware.JWTMiddleware, validators.QuestionID(), controllers.AdminDeleteQuestion)
	questionGroup.Post("/:question_id/release", middleware.JWTMiddleware, validators.QuestionID(), controllers.AdminReleaseQuestion)

	miniGroup := app.Group("/admin/mini-question")
	miniGroup.Post("/:mini_question_id/release", middleware.JWTMiddleware, validators.MiniQuestionID(), controllers.AdminReleaseMiniQuestion)

	// Release sweep, same operation the cron runs
	app.Post("/admin/releases/sweep", middleware.JWTMiddleware, controllers.AdminSweepReleases)

	// Grading
	answerGroup := app.Group("/admin/answer")
	answerGroup.Get("/pending", middleware.JWTMiddleware, controllers.AdminListPendingAnswers)
	answerGroup.Post("/:answer_id/grade", middleware.JWTMiddleware, validators.GradeAnswer(), controllers.AdminGradeAnswer)
	answerGroup.Post("/:answer_id/review", middleware.JWTMiddleware, validators.ReviewAnswer(), controllers.AdminReviewAnswer)

	// Mini answer resubmission workflow
	miniAnswerGroup := app.Group("/admin/mini-answer")
	miniAnswerGroup.Post("/:mini_answer_id/resubmission/request", middleware.JWTMiddleware, validators.MiniAnswerID(), controllers.AdminRequestMiniResubmission)
	miniAnswerGroup.Post("/:mini_answer_id/resubmission/decide", middleware.JWTMiddleware, validators.DecideMiniResubmission(), controllers.AdminDecideMiniResubmission)
}
