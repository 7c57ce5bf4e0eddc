package controllers

import (
	"time"

	"trainhub/database"
	"trainhub/middleware"
	"trainhub/models"
	cohortModels "trainhub/models/cohort"
	"trainhub/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminListPendingAnswers lists answers awaiting review, oldest first
func AdminListPendingAnswers(c *fiber.Ctx) error {
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

	db := database.Database.Db.Model(&cohortModels.Answer{}).
		Where("status = ? AND is_deleted = ?", cohortModels.AnswerPending, false)

	if cohortID := c.QueryInt("cohort_id"); cohortID > 0 {
		db = db.Where("cohort_id = ?", cohortID)
	}

	var answers []cohortModels.Answer
	if err := db.Order("created_at asc").Find(&answers).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch answers!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending answers fetched successfully!", answers)
}

// AdminGradeAnswer applies a medal grade with mandatory feedback
func AdminGradeAnswer(c *fiber.Ctx) error {
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

	answerID := c.Locals("answerID").(int)

	reqData, ok := c.Locals("validatedGrade").(*struct {
		Grade    string `json:"grade"`
		Feedback string `json:"feedback"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	answer, err := cohortModels.GradeAnswer(
		database.Database.Db, uint(answerID), reqData.Grade, reqData.Feedback, userId, time.Now())
	switch err {
	case nil:
	case cohortModels.ErrAlreadyReviewed:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Answer has already been reviewed!", nil)
	case cohortModels.ErrMissingFeedback:
		return middleware.ValidationErrorResponse(c, map[string]string{"feedback": "Feedback is required!"})
	case cohortModels.ErrInvalidGrade:
		return middleware.ValidationErrorResponse(c, map[string]string{"grade": "Grade must be GOLD, SILVER, COPPER or NEEDS_RESUBMISSION!"})
	default:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Answer not found!", nil)
	}

	go notifyAnswerGraded(answer)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer graded successfully!", answer)
}

// AdminReviewAnswer is the legacy binary approve/reject path
func AdminReviewAnswer(c *fiber.Ctx) error {
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

	answerID := c.Locals("answerID").(int)

	reqData, ok := c.Locals("validatedReview").(*struct {
		Approve  *bool  `json:"approve"`
		Feedback string `json:"feedback"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	answer, err := cohortModels.ReviewAnswer(
		database.Database.Db, uint(answerID), *reqData.Approve, reqData.Feedback, userId, time.Now())
	switch err {
	case nil:
	case cohortModels.ErrAlreadyReviewed:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Answer has already been reviewed!", nil)
	case cohortModels.ErrMissingFeedback:
		return middleware.ValidationErrorResponse(c, map[string]string{"feedback": "Feedback is required!"})
	default:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Answer not found!", nil)
	}

	go notifyAnswerGraded(answer)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer reviewed successfully!", answer)
}

// AdminRequestMiniResubmission flags a mini answer for resubmission
func AdminRequestMiniResubmission(c *fiber.Ctx) error {
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

	miniAnswerID := c.Locals("miniAnswerID").(int)

	ma, err := cohortModels.RequestMiniResubmission(database.Database.Db, uint(miniAnswerID), userId, time.Now())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Mini answer not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resubmission requested successfully!", ma)
}

// AdminDecideMiniResubmission approves or denies a flagged mini answer, once
func AdminDecideMiniResubmission(c *fiber.Ctx) error {
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

	miniAnswerID := c.Locals("miniAnswerID").(int)

	reqData, ok := c.Locals("validatedDecision").(*struct {
		Approve *bool `json:"approve"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ma, err := cohortModels.DecideMiniResubmission(
		database.Database.Db, uint(miniAnswerID), *reqData.Approve, userId, time.Now())
	switch err {
	case nil:
	case cohortModels.ErrAlreadyReviewed:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Resubmission has already been decided!", nil)
	case cohortModels.ErrNoResubmissionRequest:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "No resubmission has been requested!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Mini answer not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resubmission decided successfully!", ma)
}

// notifyAnswerGraded emails the learner about the review outcome
func notifyAnswerGraded(answer *cohortModels.Answer) {
	var member models.User
	if err := database.Database.Db.First(&member, answer.UserID).Error; err != nil {
		return
	}
	var question cohortModels.Question
	if err := database.Database.Db.First(&question, answer.QuestionID).Error; err != nil {
		return
	}

	grade := answer.Status
	if answer.Grade != nil {
		grade = *answer.Grade
	}
	utils.SendAnswerGradedEmail(member.Email, member.Name, question.Title, grade, answer.Feedback, answer.GradePoints)

	utils.NotifyWebhook("answer.graded", map[string]interface{}{
		"answer_id":   answer.ID,
		"question_id": answer.QuestionID,
		"user_id":     answer.UserID,
		"status":      answer.Status,
		"points":      answer.GradePoints,
	})
}
