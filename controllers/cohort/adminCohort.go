package controllers

import (
	"time"

	"trainhub/database"
	"trainhub/middleware"
	"trainhub/models"
	cohortModels "trainhub/models/cohort"
	"trainhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminCreateCohort creates a new cohort run
func AdminCreateCohort(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	reqData, ok := c.Locals("validatedCohort").(*struct {
		Name      string     `json:"name"`
		Theme     string     `json:"theme"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	discriminator, err := cohortModels.NextDiscriminator(database.Database.Db, reqData.Name)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create cohort!", nil)
	}

	cohort := cohortModels.Cohort{
		Name:          reqData.Name,
		Discriminator: discriminator,
		StartDate:     reqData.StartDate,
		EndDate:       reqData.EndDate,
	}
	if reqData.Theme != "" {
		cohort.Theme = reqData.Theme
	}

	if err := database.Database.Db.Create(&cohort).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create cohort!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Cohort created successfully!", cohort)
}

// AdminUpdateCohort updates cohort fields; deactivation is a flag flip,
// cohorts are never deleted
func AdminUpdateCohort(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	cohortID := c.Locals("cohortID").(int)

	var cohort cohortModels.Cohort
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", cohortID, false).First(&cohort).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cohort not found!", nil)
	}

	reqData, ok := c.Locals("validatedCohortUpdate").(*struct {
		Theme     string     `json:"theme"`
		IsActive  *bool      `json:"is_active"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Theme != "" {
		cohort.Theme = reqData.Theme
	}
	if reqData.IsActive != nil {
		cohort.IsActive = *reqData.IsActive
	}
	if reqData.StartDate != nil {
		cohort.StartDate = reqData.StartDate
	}
	if reqData.EndDate != nil {
		cohort.EndDate = reqData.EndDate
	}

	if err := database.Database.Db.Save(&cohort).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update cohort!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cohort updated successfully!", cohort)
}

// AdminSetMembershipStatus moves a learner's standing in a cohort
func AdminSetMembershipStatus(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	reqData, ok := c.Locals("validatedMembership").(*struct {
		UserID   uint   `json:"user_id"`
		CohortID uint   `json:"cohort_id"`
		Status   string `json:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	membership, err := cohortModels.SetMembershipStatus(
		database.Database.Db, reqData.UserID, reqData.CohortID, reqData.Status, userId, time.Now())
	switch err {
	case nil:
	case cohortModels.ErrMultipleActiveEnrollments:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Learner already has an active enrollment!", nil)
	case cohortModels.ErrInvalidStatus:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid membership status!", nil)
	case gorm.ErrRecordNotFound:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Learner not found!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update membership!", nil)
	}

	// Best-effort notifications after the transition committed
	var member models.User
	var cohort cohortModels.Cohort
	if database.Database.Db.First(&member, reqData.UserID).Error == nil &&
		database.Database.Db.First(&cohort, reqData.CohortID).Error == nil {
		go utils.SendMembershipStatusEmail(member.Email, member.Name, cohort.Name, membership.Status)
	}
	go utils.NotifyWebhook("membership.status_changed", map[string]interface{}{
		"user_id":   reqData.UserID,
		"cohort_id": reqData.CohortID,
		"status":    membership.Status,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership updated successfully!", membership)
}

// AdminCohortProgress reports per-member and average progress for a cohort
func AdminCohortProgress(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	cohortID := c.Locals("cohortID").(int)

	var cohort cohortModels.Cohort
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", cohortID, false).First(&cohort).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cohort not found!", nil)
	}

	var memberships []cohortModels.CohortMembership
	err := database.Database.Db.
		Where("cohort_id = ? AND status = ? AND is_deleted = ?", cohortID, cohortModels.MembershipEnrolled, false).
		Find(&memberships).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch memberships!", nil)
	}

	released, err := cohortModels.CountReleasedQuestions(database.Database.Db, uint(cohortID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	summaries := make([]cohortModels.ProgressSummary, 0, len(memberships))
	fractions := make([]float64, 0, len(memberships))
	for _, m := range memberships {
		fraction := cohortModels.LearnerProgress(m.CurrentStep, released)
		fractions = append(fractions, fraction)
		summaries = append(summaries, cohortModels.ProgressSummary{
			UserID:      m.UserID,
			CohortID:    m.CohortID,
			CurrentStep: m.CurrentStep,
			TotalSteps:  maxInt(1, released),
			Fraction:    fraction,
		})
	}

	response := map[string]interface{}{
		"cohort":           cohort,
		"members":          summaries,
		"average_progress": cohortModels.CohortAverageProgress(fractions),
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cohort progress fetched successfully!", response)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
