package cohortValidator

import (
	"strconv"
	"strings"
	"time"

	"trainhub/middleware"
	cohortModels "trainhub/models/cohort"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// parseDate accepts RFC3339 timestamps or plain dates ("2025-09-01"),
// normalizing date-only values to the start of the day.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := now.Parse(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// idParam parses a positive integer route parameter
func idParam(c *fiber.Ctx, name string) (int, bool) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ============ Cohort Validators ============

// CreateCohortAdmin validates admin cohort creation request
func CreateCohortAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := new(struct {
			Name      string `json:"name"`
			Theme     string `json:"theme"`
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		})

		if err := c.BodyParser(raw); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		raw.Name = strings.TrimSpace(raw.Name)
		raw.Theme = strings.TrimSpace(raw.Theme)

		if raw.Name == "" {
			errors["name"] = "Name is required!"
		} else if len(raw.Name) < 3 {
			errors["name"] = "Name must be at least 3 characters long!"
		}

		startDate, err := parseDate(raw.StartDate)
		if err != nil {
			errors["start_date"] = "Start date must be a valid date!"
		}
		endDate, err := parseDate(raw.EndDate)
		if err != nil {
			errors["end_date"] = "End date must be a valid date!"
		}
		if startDate != nil && endDate != nil && endDate.Before(*startDate) {
			errors["end_date"] = "End date must not be before the start date!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData := &struct {
			Name      string     `json:"name"`
			Theme     string     `json:"theme"`
			StartDate *time.Time `json:"start_date"`
			EndDate   *time.Time `json:"end_date"`
		}{
			Name:      raw.Name,
			Theme:     raw.Theme,
			StartDate: startDate,
			EndDate:   endDate,
		}

		c.Locals("validatedCohort", reqData)
		return c.Next()
	}
}

// UpdateCohortAdmin validates admin cohort update request
func UpdateCohortAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cohortID, ok := idParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Cohort ID!", nil)
		}

		raw := new(struct {
			Theme     string `json:"theme"`
			IsActive  *bool  `json:"is_active"`
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		})

		if err := c.BodyParser(raw); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		startDate, err := parseDate(raw.StartDate)
		if err != nil {
			errors["start_date"] = "Start date must be a valid date!"
		}
		endDate, err := parseDate(raw.EndDate)
		if err != nil {
			errors["end_date"] = "End date must be a valid date!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData := &struct {
			Theme     string     `json:"theme"`
			IsActive  *bool      `json:"is_active"`
			StartDate *time.Time `json:"start_date"`
			EndDate   *time.Time `json:"end_date"`
		}{
			Theme:     strings.TrimSpace(raw.Theme),
			IsActive:  raw.IsActive,
			StartDate: startDate,
			EndDate:   endDate,
		}

		c.Locals("cohortID", cohortID)
		c.Locals("validatedCohortUpdate", reqData)
		return c.Next()
	}
}

// CohortID validates the cohort id route parameter
func CohortID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cohortID, ok := idParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Cohort ID!", nil)
		}
		c.Locals("cohortID", cohortID)
		return c.Next()
	}
}

// MembershipStatus validates a membership status change request
func MembershipStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID   uint   `json:"user_id"`
			CohortID uint   `json:"cohort_id"`
			Status   string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Status = strings.TrimSpace(strings.ToUpper(reqData.Status))

		if reqData.UserID == 0 {
			errors["user_id"] = "User ID is required!"
		}
		if reqData.CohortID == 0 {
			errors["cohort_id"] = "Cohort ID is required!"
		}
		if !cohortModels.ValidMembershipStatus(reqData.Status) {
			errors["status"] = "Status must be ENROLLED, GRADUATED, REMOVED, or SUSPENDED!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMembership", reqData)
		return c.Next()
	}
}

// CreateModule validates module creation request
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cohortID, ok := idParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Cohort ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("cohortID", cohortID)
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// ModuleID validates the module id route parameter
func ModuleID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		moduleID, ok := idParam(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}
		c.Locals("moduleID", moduleID)
		return c.Next()
	}
}
