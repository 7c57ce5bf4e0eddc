package cohortValidator

import (
	"strings"

	"trainhub/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// SubmitAnswer validates a learner answer submission. Works for both JSON
// bodies and multipart forms carrying attachments.
func SubmitAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, ok := idParam(c, "question_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}

		reqData := new(struct {
			Text string `json:"text" form:"text"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Text = strings.TrimSpace(reqData.Text)

		if reqData.Text == "" {
			errors["text"] = "Answer text is required!"
		} else if len(reqData.Text) < 10 {
			errors["text"] = "Answer text must be at least 10 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("questionID", questionID)
		c.Locals("validatedAnswer", reqData)
		return c.Next()
	}
}

// SubmitMiniAnswer validates a mini answer link submission
func SubmitMiniAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		miniQuestionID, ok := idParam(c, "mini_question_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Mini Question ID!", nil)
		}

		reqData := new(struct {
			LinkURL string `json:"link_url"`
			Notes   string `json:"notes"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.LinkURL = strings.TrimSpace(reqData.LinkURL)
		reqData.Notes = strings.TrimSpace(reqData.Notes)

		if reqData.LinkURL == "" {
			errors["link_url"] = "Link URL is required!"
		} else if err := validate.Var(reqData.LinkURL, "url"); err != nil {
			errors["link_url"] = "Link URL must be a valid URL!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("miniQuestionID", miniQuestionID)
		c.Locals("validatedMiniAnswer", reqData)
		return c.Next()
	}
}
