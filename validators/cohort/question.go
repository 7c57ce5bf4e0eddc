package cohortValidator

import (
	"strings"

	"trainhub/middleware"
	cohortModels "trainhub/models/cohort"

	"github.com/gofiber/fiber/v2"
)

// rawSection mirrors SectionInput with string dates for flexible parsing
type rawSection struct {
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	OrderIndex    int               `json:"order_index"`
	MiniQuestions []rawMiniQuestion `json:"mini_questions"`
}

type rawMiniQuestion struct {
	Prompt      string `json:"prompt"`
	OrderIndex  int    `json:"order_index"`
	ReleaseDate string `json:"release_date"`
}

type rawQuestion struct {
	ModuleID    *uint        `json:"module_id"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	OrderIndex  int          `json:"order_index"`
	Deadline    string       `json:"deadline"`
	Points      int          `json:"points"`
	BonusPoints int          `json:"bonus_points"`
	Sections    []rawSection `json:"content_sections"`
}

// buildQuestionInput converts the raw payload, collecting date errors
func buildQuestionInput(raw *rawQuestion, errors map[string]string) *cohortModels.QuestionInput {
	in := &cohortModels.QuestionInput{
		ModuleID:    raw.ModuleID,
		Title:       strings.TrimSpace(raw.Title),
		Body:        raw.Body,
		OrderIndex:  raw.OrderIndex,
		Points:      raw.Points,
		BonusPoints: raw.BonusPoints,
	}

	deadline, err := parseDate(raw.Deadline)
	if err != nil {
		errors["deadline"] = "Deadline must be a valid date!"
	}
	in.Deadline = deadline

	if raw.Sections != nil {
		in.Sections = make([]cohortModels.SectionInput, 0, len(raw.Sections))
		for _, sec := range raw.Sections {
			section := cohortModels.SectionInput{
				Title:      strings.TrimSpace(sec.Title),
				Body:       sec.Body,
				OrderIndex: sec.OrderIndex,
			}
			for _, mq := range sec.MiniQuestions {
				releaseDate, err := parseDate(mq.ReleaseDate)
				if err != nil {
					errors["content_sections"] = "Mini question release dates must be valid dates!"
					continue
				}
				if strings.TrimSpace(mq.Prompt) == "" {
					errors["content_sections"] = "Mini question prompts are required!"
					continue
				}
				section.MiniQuestions = append(section.MiniQuestions, cohortModels.MiniQuestionInput{
					Prompt:      strings.TrimSpace(mq.Prompt),
					OrderIndex:  mq.OrderIndex,
					ReleaseDate: releaseDate,
				})
			}
			if section.Title == "" {
				errors["content_sections"] = "Section titles are required!"
			}
			in.Sections = append(in.Sections, section)
		}
	}

	return in
}

// CreateQuestionAdmin validates admin question creation with nested sections
func CreateQuestionAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cohortID, ok := idParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Cohort ID!", nil)
		}

		raw := new(rawQuestion)
		if err := c.BodyParser(raw); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(raw.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(raw.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if raw.OrderIndex <= 0 {
			errors["order_index"] = "Order index must be a positive number!"
		}

		if strings.TrimSpace(raw.Deadline) == "" {
			errors["deadline"] = "Deadline is required!"
		}

		if raw.Points < 0 || raw.BonusPoints < 0 {
			errors["points"] = "Points must not be negative!"
		}

		in := buildQuestionInput(raw, errors)

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("cohortID", cohortID)
		c.Locals("validatedQuestion", in)
		return c.Next()
	}
}

// UpdateQuestionAdmin validates admin question update request
func UpdateQuestionAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, ok := idParam(c, "question_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}

		raw := new(rawQuestion)
		if err := c.BodyParser(raw); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if raw.Title != "" && len(strings.TrimSpace(raw.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if raw.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}
		if raw.Points < 0 || raw.BonusPoints < 0 {
			errors["points"] = "Points must not be negative!"
		}

		in := buildQuestionInput(raw, errors)

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("questionID", questionID)
		c.Locals("validatedQuestionUpdate", in)
		return c.Next()
	}
}

// QuestionID validates the question id route parameter
func QuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, ok := idParam(c, "question_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}
		c.Locals("questionID", questionID)
		return c.Next()
	}
}

// MiniQuestionID validates the mini question id route parameter
func MiniQuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		miniQuestionID, ok := idParam(c, "mini_question_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Mini Question ID!", nil)
		}
		c.Locals("miniQuestionID", miniQuestionID)
		return c.Next()
	}
}
