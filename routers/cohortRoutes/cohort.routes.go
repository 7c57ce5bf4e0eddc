package cohortRoutes

import (
	controllers "trainhub/controllers/cohort"
	"trainhub/middleware"
	validators "trainhub/validators/cohort"

	"github.com/gofiber/fiber/v2"
)

// SetupCohortRoutes sets up all learner-facing routes
func SetupCohortRoutes(app *fiber.App) {
	userGroup := app.Group("/cohort")

	// Question listing and detail with per-learner availability
	userGroup.Get("/questions", middleware.JWTMiddleware, controllers.GetQuestions)
	userGroup.Get("/question/:question_id", middleware.JWTMiddleware, validators.QuestionID(), controllers.GetQuestionDetail)

	// Submissions
	userGroup.Post("/question/:question_id/answer", middleware.JWTMiddleware, validators.SubmitAnswer(), controllers.SubmitAnswer)
	userGroup.Post("/mini-question/:mini_question_id/answer", middleware.JWTMiddleware, validators.SubmitMiniAnswer(), controllers.SubmitMiniAnswer)

	// Progress tracking
	userGroup.Get("/progress", middleware.JWTMiddleware, controllers.GetMyProgress)
}
