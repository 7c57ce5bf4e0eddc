package controllers

import (
	"trainhub/database"
	"trainhub/middleware"
	"trainhub/models"
	cohortModels "trainhub/models/cohort"

	"github.com/gofiber/fiber/v2"
)

// GetMyProgress reports the learner's progress in their current cohort
func GetMyProgress(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	membership, err := currentMembership(&user)
	if err != nil || membership == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active cohort enrollment!", nil)
	}

	summary, err := cohortModels.ProgressForMembership(database.Database.Db, membership)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", summary)
}
