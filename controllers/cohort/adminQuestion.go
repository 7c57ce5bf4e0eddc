package controllers

import (
	"errors"
	"time"

	"trainhub/database"
	"trainhub/middleware"
	"trainhub/models"
	cohortModels "trainhub/models/cohort"
	"trainhub/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateModule creates a new module in a cohort
func AdminCreateModule(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next order index if not provided
	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		database.Database.Db.Model(&cohortModels.CourseModule{}).
			Where("cohort_id = ? AND is_deleted = ?", cohortID, false).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		orderIndex = maxOrder + 1
	}

	module := cohortModels.CourseModule{
		CohortID:    uint(cohortID),
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  orderIndex,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminReleaseModule releases a module. Re-releasing is a no-op and keeps the
// original release timestamp.
func AdminReleaseModule(c *fiber.Ctx) error {
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

	moduleID := c.Locals("moduleID").(int)

	module, err := cohortModels.ReleaseModule(database.Database.Db, uint(moduleID), time.Now())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	go utils.NotifyWebhook("module.released", map[string]interface{}{
		"module_id": module.ID,
		"cohort_id": module.CohortID,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module released successfully!", module)
}

// AdminCreateQuestion creates a question with nested content sections and
// mini questions. A mini question scheduled after the deadline rejects the
// whole write.
func AdminCreateQuestion(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedQuestion").(*cohortModels.QuestionInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	question, err := cohortModels.CreateQuestion(database.Database.Db, uint(cohortID), *reqData)
	if err != nil {
		var conflict *cohortModels.DeadlineConflictError
		if errors.As(err, &conflict) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, conflict.Error(), nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

// AdminUpdateQuestion updates a question; supplied sections replace existing
// ones and re-run the deadline check
func AdminUpdateQuestion(c *fiber.Ctx) error {
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

	questionID := c.Locals("questionID").(int)

	reqData, ok := c.Locals("validatedQuestionUpdate").(*cohortModels.QuestionInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	question, err := cohortModels.UpdateQuestion(database.Database.Db, uint(questionID), *reqData)
	if err != nil {
		var conflict *cohortModels.DeadlineConflictError
		if errors.As(err, &conflict) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, conflict.Error(), nil)
		}
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

// AdminReleaseQuestion releases a question, catch-up releasing overdue mini
// questions in the same operation
func AdminReleaseQuestion(c *fiber.Ctx) error {
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

	questionID := c.Locals("questionID").(int)

	question, err := cohortModels.ReleaseQuestion(database.Database.Db, uint(questionID), time.Now())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	// Tell enrolled learners new content is up, best-effort
	go notifyQuestionReleased(question)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question released successfully!", question)
}

// AdminReleaseMiniQuestion releases a single mini question by hand
func AdminReleaseMiniQuestion(c *fiber.Ctx) error {
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

	miniQuestionID := c.Locals("miniQuestionID").(int)

	mini, err := cohortModels.ReleaseMiniQuestion(database.Database.Db, uint(miniQuestionID), time.Now())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Mini question not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Mini question released successfully!", mini)
}

// AdminDeleteQuestion soft deletes a question unless submissions depend on it
func AdminDeleteQuestion(c *fiber.Ctx) error {
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

	questionID := c.Locals("questionID").(int)

	err := cohortModels.DeleteQuestion(database.Database.Db, uint(questionID))
	if err == cohortModels.ErrHasDependents {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Question has existing submissions and cannot be deleted!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

// AdminSweepReleases runs the mini question release sweep on demand
func AdminSweepReleases(c *fiber.Ctx) error {
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

	count := utils.RunReleaseSweep(time.Now())

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sweep completed!", map[string]interface{}{
		"released": count,
	})
}

// notifyQuestionReleased emails every enrolled member of the question's cohort
func notifyQuestionReleased(question *cohortModels.Question) {
	var memberships []cohortModels.CohortMembership
	err := database.Database.Db.
		Where("cohort_id = ? AND status = ? AND is_deleted = ?",
			question.CohortID, cohortModels.MembershipEnrolled, false).
		Find(&memberships).Error
	if err != nil {
		return
	}

	for _, m := range memberships {
		var member models.User
		if err := database.Database.Db.First(&member, m.UserID).Error; err != nil {
			continue
		}
		utils.SendQuestionReleasedEmail(member.Email, member.Name, question.Title)
	}

	utils.NotifyWebhook("question.released", map[string]interface{}{
		"question_id": question.ID,
		"cohort_id":   question.CohortID,
	})
}
