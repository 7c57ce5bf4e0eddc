package cohortValidator

import (
	"strings"

	"trainhub/middleware"
	cohortModels "trainhub/models/cohort"

	"github.com/gofiber/fiber/v2"
)

// GradeAnswer validates a medal grading request
func GradeAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		answerID, ok := idParam(c, "answer_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Answer ID!", nil)
		}

		reqData := new(struct {
			Grade    string `json:"grade"`
			Feedback string `json:"feedback"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Grade = strings.TrimSpace(strings.ToUpper(reqData.Grade))
		reqData.Feedback = strings.TrimSpace(reqData.Feedback)

		switch reqData.Grade {
		case cohortModels.GradeGold, cohortModels.GradeSilver, cohortModels.GradeCopper, cohortModels.GradeNeedsResubmission:
		default:
			errors["grade"] = "Grade must be GOLD, SILVER, COPPER or NEEDS_RESUBMISSION!"
		}

		if reqData.Feedback == "" {
			errors["feedback"] = "Feedback is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("answerID", answerID)
		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}

// ReviewAnswer validates a binary approve/reject request
func ReviewAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		answerID, ok := idParam(c, "answer_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Answer ID!", nil)
		}

		reqData := new(struct {
			Approve  *bool  `json:"approve"`
			Feedback string `json:"feedback"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Feedback = strings.TrimSpace(reqData.Feedback)

		if reqData.Approve == nil {
			errors["approve"] = "Approve is required!"
		}
		if reqData.Feedback == "" {
			errors["feedback"] = "Feedback is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("answerID", answerID)
		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

// MiniAnswerID validates the mini answer id route parameter
func MiniAnswerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		miniAnswerID, ok := idParam(c, "mini_answer_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Mini Answer ID!", nil)
		}
		c.Locals("miniAnswerID", miniAnswerID)
		return c.Next()
	}
}

// DecideMiniResubmission validates a resubmission decision request
func DecideMiniResubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		miniAnswerID, ok := idParam(c, "mini_answer_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Mini Answer ID!", nil)
		}

		reqData := new(struct {
			Approve *bool `json:"approve"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Approve == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"approve": "Approve is required!"})
		}

		c.Locals("miniAnswerID", miniAnswerID)
		c.Locals("validatedDecision", reqData)
		return c.Next()
	}
}
